package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
)

type fakePartnershipRepo struct {
	partnerships map[string]*model.Partnership
}

func newFakePartnershipRepo() *fakePartnershipRepo {
	return &fakePartnershipRepo{partnerships: make(map[string]*model.Partnership)}
}

func (r *fakePartnershipRepo) Create(partnership *model.Partnership) error {
	r.partnerships[partnership.ID] = partnership
	return nil
}

func (r *fakePartnershipRepo) ByID(id string) (*model.Partnership, error) {
	partnership, ok := r.partnerships[id]
	if !ok {
		return nil, repository.ErrPartnershipNotFound
	}
	return partnership, nil
}

func (r *fakePartnershipRepo) ActiveByUser(userID string) (*model.Partnership, error) {
	for _, partnership := range r.partnerships {
		if partnership.Status == model.PartnershipStatusActive && partnership.HasMember(userID) {
			return partnership, nil
		}
	}
	return nil, repository.ErrPartnershipNotFound
}

func (r *fakePartnershipRepo) Update(partnership *model.Partnership) error {
	if _, ok := r.partnerships[partnership.ID]; !ok {
		return repository.ErrPartnershipNotFound
	}
	r.partnerships[partnership.ID] = partnership
	return nil
}

type fakeInviteRepo struct {
	invites map[string]*model.PartnershipInvite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[string]*model.PartnershipInvite)}
}

func (r *fakeInviteRepo) Create(invite *model.PartnershipInvite) error {
	r.invites[invite.ID] = invite
	return nil
}

func (r *fakeInviteRepo) ByCode(code string) (*model.PartnershipInvite, error) {
	for _, invite := range r.invites {
		if invite.Code == code {
			return invite, nil
		}
	}
	return nil, repository.ErrInviteNotFound
}

func (r *fakeInviteRepo) UpdateStatus(id, status string) error {
	invite, ok := r.invites[id]
	if !ok {
		return repository.ErrInviteNotFound
	}
	invite.Status = status
	return nil
}

func newPartnershipFixture() (*PartnershipService, *fakePartnershipRepo, *fakeInviteRepo) {
	repo := newFakePartnershipRepo()
	inviteRepo := newFakeInviteRepo()
	emailService := NewEmailService("", "noreply@example.com", "http://localhost:8090", "Tandem", true)
	svc := NewPartnershipService(repo, inviteRepo, emailService, 168*time.Hour)
	return svc, repo, inviteRepo
}

func TestInviteAndAccept(t *testing.T) {
	svc, _, _ := newPartnershipFixture()

	invite, err := svc.Invite(userOne, "Alex", "partner@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusPending, invite.Status)
	assert.NotEmpty(t, invite.Code)

	partnership, err := svc.AcceptInvite(userTwo, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, model.PartnershipStatusActive, partnership.Status)
	assert.True(t, partnership.HasMember(userOne))
	assert.True(t, partnership.HasMember(userTwo))

	// Accepted invites cannot be reused.
	_, err = svc.AcceptInvite("user-3", invite.Code)
	assert.ErrorIs(t, err, ErrInviteNotPending)
}

func TestInviteValidation(t *testing.T) {
	svc, _, _ := newPartnershipFixture()

	_, err := svc.Invite(userOne, "Alex", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestInviteWhileAlreadyPartnered(t *testing.T) {
	svc, repo, _ := newPartnershipFixture()
	require.NoError(t, repo.Create(&model.Partnership{
		ID:        "p-1",
		UserOneID: userOne,
		UserTwoID: userTwo,
		Status:    model.PartnershipStatusActive,
	}))

	_, err := svc.Invite(userOne, "Alex", "partner@example.com")
	assert.ErrorIs(t, err, ErrAlreadyPartnered)
}

func TestAcceptInviteErrors(t *testing.T) {
	svc, _, inviteRepo := newPartnershipFixture()

	_, err := svc.AcceptInvite(userTwo, "unknown-code")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	invite, err := svc.Invite(userOne, "Alex", "partner@example.com")
	require.NoError(t, err)

	// Inviters cannot pair with themselves.
	_, err = svc.AcceptInvite(userOne, invite.Code)
	assert.ErrorIs(t, err, ErrCannotAcceptOwnInvite)

	// Expired invites are rejected.
	inviteRepo.invites[invite.ID].ExpiresAt = time.Now().Add(-time.Hour)
	_, err = svc.AcceptInvite(userTwo, invite.Code)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestResolve(t *testing.T) {
	svc, repo, _ := newPartnershipFixture()

	_, _, err := svc.Resolve(userOne)
	assert.ErrorIs(t, err, ErrNoActivePartnership)

	require.NoError(t, repo.Create(&model.Partnership{
		ID:        "p-1",
		UserOneID: userOne,
		UserTwoID: userTwo,
		Status:    model.PartnershipStatusActive,
	}))

	partnershipID, partnerID, err := svc.Resolve(userOne)
	require.NoError(t, err)
	assert.Equal(t, "p-1", partnershipID)
	assert.Equal(t, userTwo, partnerID)

	_, partnerID, err = svc.Resolve(userTwo)
	require.NoError(t, err)
	assert.Equal(t, userOne, partnerID)
}

func TestEndPartnership(t *testing.T) {
	svc, repo, _ := newPartnershipFixture()
	require.NoError(t, repo.Create(&model.Partnership{
		ID:        "p-1",
		UserOneID: userOne,
		UserTwoID: userTwo,
		Status:    model.PartnershipStatusActive,
	}))

	require.NoError(t, svc.End(userOne))

	_, _, err := svc.Resolve(userOne)
	assert.ErrorIs(t, err, ErrNoActivePartnership)

	assert.ErrorIs(t, svc.End(userOne), ErrNoActivePartnership)
}

func TestEndedPartnershipAllowsNewInvite(t *testing.T) {
	svc, repo, _ := newPartnershipFixture()
	require.NoError(t, repo.Create(&model.Partnership{
		ID:        "p-1",
		UserOneID: userOne,
		UserTwoID: userTwo,
		Status:    model.PartnershipStatusEnded,
	}))

	_, err := svc.Invite(userOne, "Alex", "someone@example.com")
	assert.NoError(t, err)
}
