package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
	"github.com/usetandem/tandem/internal/validation"
)

var (
	ErrNoActivePartnership   = errors.New("no active partnership")
	ErrAlreadyPartnered      = errors.New("user already has an active partnership")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteExpired         = errors.New("invite has expired")
	ErrInviteNotPending      = errors.New("invite is no longer pending")
	ErrCannotAcceptOwnInvite = errors.New("cannot accept your own invite")
)

type PartnershipService struct {
	repo         repository.PartnershipRepository
	inviteRepo   repository.InviteRepository
	emailService *EmailService
	inviteExpiry time.Duration
}

func NewPartnershipService(
	repo repository.PartnershipRepository,
	inviteRepo repository.InviteRepository,
	emailService *EmailService,
	inviteExpiry time.Duration,
) *PartnershipService {
	return &PartnershipService{
		repo:         repo,
		inviteRepo:   inviteRepo,
		emailService: emailService,
		inviteExpiry: inviteExpiry,
	}
}

// Resolve returns the active partnership of userID and the counterpart's
// user id. Fails with ErrNoActivePartnership when the user is unpaired.
func (s *PartnershipService) Resolve(userID string) (partnershipID, partnerID string, err error) {
	partnership, err := s.repo.ActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnershipNotFound) {
			return "", "", ErrNoActivePartnership
		}
		return "", "", fmt.Errorf("failed to resolve partnership: %w", err)
	}

	return partnership.ID, partnership.CounterpartOf(userID), nil
}

func (s *PartnershipService) ActivePartnership(userID string) (*model.Partnership, error) {
	partnership, err := s.repo.ActiveByUser(userID)
	if errors.Is(err, repository.ErrPartnershipNotFound) {
		return nil, ErrNoActivePartnership
	}
	return partnership, err
}

// Invite creates a pending invite and emails the code to the counterpart.
func (s *PartnershipService) Invite(inviterID, inviterName, email string) (*model.PartnershipInvite, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	_, err = s.repo.ActiveByUser(inviterID)
	if err == nil {
		return nil, ErrAlreadyPartnered
	}
	if !errors.Is(err, repository.ErrPartnershipNotFound) {
		return nil, fmt.Errorf("failed to check partnership: %w", err)
	}

	now := time.Now()
	invite := &model.PartnershipInvite{
		ID:        uuid.New().String(),
		InviterID: inviterID,
		Email:     email,
		Code:      uuid.New().String(),
		Status:    model.InviteStatusPending,
		ExpiresAt: now.Add(s.inviteExpiry),
		CreatedAt: now,
	}

	err = s.inviteRepo.Create(invite)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	err = s.emailService.SendPartnerInvite(email, invite.Code, inviterName)
	if err != nil {
		// The invite is usable via code even when the email bounces.
		return invite, fmt.Errorf("invite created but email failed: %w", err)
	}

	return invite, nil
}

// AcceptInvite pairs the accepting user with the inviter and activates the
// partnership.
func (s *PartnershipService) AcceptInvite(userID, code string) (*model.Partnership, error) {
	invite, err := s.inviteRepo.ByCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	if invite.Status != model.InviteStatusPending {
		return nil, ErrInviteNotPending
	}
	if invite.IsExpired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if invite.InviterID == userID {
		return nil, ErrCannotAcceptOwnInvite
	}

	// Both sides must be unpaired.
	_, err = s.repo.ActiveByUser(userID)
	if err == nil {
		return nil, ErrAlreadyPartnered
	}
	if !errors.Is(err, repository.ErrPartnershipNotFound) {
		return nil, fmt.Errorf("failed to check partnership: %w", err)
	}
	_, err = s.repo.ActiveByUser(invite.InviterID)
	if err == nil {
		return nil, ErrAlreadyPartnered
	}
	if !errors.Is(err, repository.ErrPartnershipNotFound) {
		return nil, fmt.Errorf("failed to check partnership: %w", err)
	}

	now := time.Now()
	partnership := &model.Partnership{
		ID:        uuid.New().String(),
		UserOneID: invite.InviterID,
		UserTwoID: userID,
		Status:    model.PartnershipStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(partnership)
	if err != nil {
		return nil, fmt.Errorf("failed to create partnership: %w", err)
	}

	err = s.inviteRepo.UpdateStatus(invite.ID, model.InviteStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invite accepted: %w", err)
	}

	return partnership, nil
}

// End transitions the user's active partnership to ended.
func (s *PartnershipService) End(userID string) error {
	partnership, err := s.repo.ActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repository.ErrPartnershipNotFound) {
			return ErrNoActivePartnership
		}
		return fmt.Errorf("failed to load partnership: %w", err)
	}

	partnership.Status = model.PartnershipStatusEnded
	return s.repo.Update(partnership)
}
