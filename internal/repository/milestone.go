package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
)

type MilestoneRepository interface {
	Create(milestone *model.Milestone) error
	ByID(partnershipID, milestoneID string) (*model.Milestone, error)
	ByPartnership(partnershipID string) ([]*model.Milestone, error)
	Update(milestone *model.Milestone) error
	Delete(partnershipID, milestoneID string) error
}

type milestoneRepository struct {
	db *sqlx.DB
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(milestone *model.Milestone) error {
	query := `INSERT INTO milestones (id, partnership_id, created_by, title, occurred_on, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		milestone.ID,
		milestone.PartnershipID,
		milestone.CreatedBy,
		milestone.Title,
		milestone.OccurredOn,
		milestone.Notes,
		milestone.CreatedAt,
		milestone.UpdatedAt,
	)

	return err
}

func (r *milestoneRepository) ByID(partnershipID, milestoneID string) (*model.Milestone, error) {
	milestone := &model.Milestone{}
	query := `SELECT * FROM milestones WHERE id = $1 AND partnership_id = $2`

	err := r.db.Get(milestone, query, milestoneID, partnershipID)
	if err == sql.ErrNoRows {
		return nil, ErrMilestoneNotFound
	}

	return milestone, err
}

func (r *milestoneRepository) ByPartnership(partnershipID string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `SELECT * FROM milestones WHERE partnership_id = $1 ORDER BY occurred_on DESC`

	err := r.db.Select(&milestones, query, partnershipID)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *milestoneRepository) Update(milestone *model.Milestone) error {
	query := `UPDATE milestones SET title = $1, occurred_on = $2, notes = $3, updated_at = $4
	          WHERE id = $5 AND partnership_id = $6`

	result, err := r.db.Exec(query,
		milestone.Title,
		milestone.OccurredOn,
		milestone.Notes,
		time.Now(),
		milestone.ID,
		milestone.PartnershipID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMilestoneNotFound
	}

	return nil
}

func (r *milestoneRepository) Delete(partnershipID, milestoneID string) error {
	query := `DELETE FROM milestones WHERE id = $1 AND partnership_id = $2`

	result, err := r.db.Exec(query, milestoneID, partnershipID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMilestoneNotFound
	}

	return nil
}
