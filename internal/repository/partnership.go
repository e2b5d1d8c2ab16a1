package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrPartnershipNotFound = errors.New("partnership not found")
	ErrInviteNotFound      = errors.New("invite not found")
)

type PartnershipRepository interface {
	Create(partnership *model.Partnership) error
	ByID(id string) (*model.Partnership, error)
	ActiveByUser(userID string) (*model.Partnership, error)
	Update(partnership *model.Partnership) error
}

type partnershipRepository struct {
	db *sqlx.DB
}

func NewPartnershipRepository(db *sqlx.DB) PartnershipRepository {
	return &partnershipRepository{db: db}
}

func (r *partnershipRepository) Create(partnership *model.Partnership) error {
	query := `INSERT INTO partnerships (id, user_one_id, user_two_id, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		partnership.ID,
		partnership.UserOneID,
		partnership.UserTwoID,
		partnership.Status,
		partnership.CreatedAt,
		partnership.UpdatedAt,
	)

	return err
}

func (r *partnershipRepository) ByID(id string) (*model.Partnership, error) {
	partnership := &model.Partnership{}
	query := `SELECT * FROM partnerships WHERE id = $1`

	err := r.db.Get(partnership, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPartnershipNotFound
	}

	return partnership, err
}

func (r *partnershipRepository) ActiveByUser(userID string) (*model.Partnership, error) {
	partnership := &model.Partnership{}
	query := `SELECT * FROM partnerships
	          WHERE (user_one_id = $1 OR user_two_id = $1) AND status = $2`

	err := r.db.Get(partnership, query, userID, model.PartnershipStatusActive)
	if err == sql.ErrNoRows {
		return nil, ErrPartnershipNotFound
	}

	return partnership, err
}

func (r *partnershipRepository) Update(partnership *model.Partnership) error {
	query := `UPDATE partnerships SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, partnership.Status, time.Now(), partnership.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPartnershipNotFound
	}

	return nil
}

type InviteRepository interface {
	Create(invite *model.PartnershipInvite) error
	ByCode(code string) (*model.PartnershipInvite, error)
	UpdateStatus(id, status string) error
}

type inviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(invite *model.PartnershipInvite) error {
	query := `INSERT INTO partnership_invites (id, inviter_id, email, code, status, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		invite.ID,
		invite.InviterID,
		invite.Email,
		invite.Code,
		invite.Status,
		invite.ExpiresAt,
		invite.CreatedAt,
	)

	return err
}

func (r *inviteRepository) ByCode(code string) (*model.PartnershipInvite, error) {
	invite := &model.PartnershipInvite{}
	query := `SELECT * FROM partnership_invites WHERE code = $1`

	err := r.db.Get(invite, query, code)
	if err == sql.ErrNoRows {
		return nil, ErrInviteNotFound
	}

	return invite, err
}

func (r *inviteRepository) UpdateStatus(id, status string) error {
	query := `UPDATE partnership_invites SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrInviteNotFound
	}

	return nil
}
