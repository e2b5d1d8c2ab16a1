package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/notify"
	"github.com/usetandem/tandem/internal/repository"
)

var (
	ErrEmptyMessage = errors.New("message body is required")
)

const reframeSystem = "You help partners communicate kindly. Rewrite the message below so it " +
	"expresses the same need without blame, using I-statements. Keep it short and natural."

type MessageService struct {
	repo       repository.MessageRepository
	resolver   PartnerResolver
	dispatcher EventDispatcher
	generator  TextGenerator
}

func NewMessageService(
	repo repository.MessageRepository,
	resolver PartnerResolver,
	dispatcher EventDispatcher,
	generator TextGenerator,
) *MessageService {
	return &MessageService{
		repo:       repo,
		resolver:   resolver,
		dispatcher: dispatcher,
		generator:  generator,
	}
}

// Send persists a message in the sender's partnership and notifies the
// counterpart (live when connected, push otherwise).
func (s *MessageService) Send(senderID, body string) (*model.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	partnershipID, partnerID, err := s.resolver.Resolve(senderID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ID:            uuid.New().String(),
		PartnershipID: partnershipID,
		SenderID:      senderID,
		Body:          body,
		CreatedAt:     time.Now(),
	}

	err = s.repo.Create(message)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.dispatcher.Dispatch(partnerID, notify.Event{
		Type:    notify.EventNewMessage,
		Title:   "New message",
		ActorID: senderID,
	})

	return message, nil
}

func (s *MessageService) Messages(userID string, limit int) ([]*model.Message, error) {
	partnershipID, _, err := s.resolver.Resolve(userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ByPartnership(partnershipID, limit)
}

// Reframe returns a softened rewording of a draft without persisting
// anything; the sender decides what to actually send.
func (s *MessageService) Reframe(ctx context.Context, body string) (string, error) {
	if body == "" {
		return "", ErrEmptyMessage
	}

	return s.generator.Generate(ctx, reframeSystem, body)
}
