package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/notify"
	"github.com/usetandem/tandem/internal/repository"
)

type MilestoneService struct {
	repo       repository.MilestoneRepository
	resolver   PartnerResolver
	dispatcher EventDispatcher
}

func NewMilestoneService(
	repo repository.MilestoneRepository,
	resolver PartnerResolver,
	dispatcher EventDispatcher,
) *MilestoneService {
	return &MilestoneService{
		repo:       repo,
		resolver:   resolver,
		dispatcher: dispatcher,
	}
}

func (s *MilestoneService) Create(userID, title, notes string, occurredOn time.Time) (*model.Milestone, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	partnershipID, partnerID, err := s.resolver.Resolve(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	milestone := &model.Milestone{
		ID:            uuid.New().String(),
		PartnershipID: partnershipID,
		CreatedBy:     userID,
		Title:         title,
		OccurredOn:    occurredOn,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.repo.Create(milestone)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	s.dispatcher.Dispatch(partnerID, notify.Event{
		Type:    notify.EventNewMilestone,
		Title:   milestone.Title,
		ActorID: userID,
	})

	return milestone, nil
}

func (s *MilestoneService) Milestones(userID string) ([]*model.Milestone, error) {
	partnershipID, _, err := s.resolver.Resolve(userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ByPartnership(partnershipID)
}

func (s *MilestoneService) Update(userID, milestoneID, title, notes string, occurredOn time.Time) (*model.Milestone, error) {
	partnershipID, _, err := s.resolver.Resolve(userID)
	if err != nil {
		return nil, err
	}

	milestone, err := s.repo.ByID(partnershipID, milestoneID)
	if err != nil {
		return nil, err
	}

	milestone.Title = title
	milestone.Notes = notes
	milestone.OccurredOn = occurredOn
	milestone.UpdatedAt = time.Now()

	err = s.repo.Update(milestone)
	if err != nil {
		return nil, err
	}

	return milestone, nil
}

func (s *MilestoneService) Delete(userID, milestoneID string) error {
	partnershipID, _, err := s.resolver.Resolve(userID)
	if err != nil {
		return err
	}

	return s.repo.Delete(partnershipID, milestoneID)
}
