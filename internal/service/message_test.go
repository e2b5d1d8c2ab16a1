package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/notify"
)

type fakeMessageRepo struct {
	messages []*model.Message
}

func (r *fakeMessageRepo) Create(message *model.Message) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) ByPartnership(partnershipID string, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for _, message := range r.messages {
		if message.PartnershipID == partnershipID {
			out = append(out, message)
		}
	}
	return out, nil
}

func TestSendMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	dispatcher := &fakeDispatcher{}
	resolver := &fakeResolver{partnershipID: "p-1", partnerID: userTwo}
	svc := NewMessageService(repo, resolver, dispatcher, EchoGenerator{})

	message, err := svc.Send(userOne, "thinking of you")
	require.NoError(t, err)
	assert.Equal(t, "p-1", message.PartnershipID)
	assert.Equal(t, userOne, message.SenderID)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, userTwo, dispatcher.events[0].userID)
	assert.Equal(t, notify.EventNewMessage, dispatcher.events[0].event.Type)
}

func TestSendMessageValidation(t *testing.T) {
	svc := NewMessageService(&fakeMessageRepo{}, &fakeResolver{partnershipID: "p-1", partnerID: userTwo}, &fakeDispatcher{}, EchoGenerator{})

	_, err := svc.Send(userOne, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendMessageWithoutPartnership(t *testing.T) {
	svc := NewMessageService(&fakeMessageRepo{}, &fakeResolver{err: ErrNoActivePartnership}, &fakeDispatcher{}, EchoGenerator{})

	_, err := svc.Send(userOne, "hello")
	assert.ErrorIs(t, err, ErrNoActivePartnership)
}

func TestReframe(t *testing.T) {
	svc := NewMessageService(&fakeMessageRepo{}, &fakeResolver{}, &fakeDispatcher{}, EchoGenerator{})

	out, err := svc.Reframe(context.Background(), "you never listen")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = svc.Reframe(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
