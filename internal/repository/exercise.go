package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
)

type ExerciseRepository interface {
	Create(exercise *model.Exercise) error
	ByID(id string) (*model.Exercise, error)
	ByUser(userID, status string) ([]*model.Exercise, error)
	Update(exercise *model.Exercise) error
}

type exerciseRepository struct {
	db *sqlx.DB
}

func NewExerciseRepository(db *sqlx.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(exercise *model.Exercise) error {
	query := `INSERT INTO exercises (id, partnership_id, initiator_id, partner_id, template_id,
	              title, description, type, status, total_steps, current_step_number,
	              current_owner_id, created_at, updated_at, completed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(query,
		exercise.ID,
		exercise.PartnershipID,
		exercise.InitiatorID,
		exercise.PartnerID,
		exercise.TemplateID,
		exercise.Title,
		exercise.Description,
		exercise.Type,
		exercise.Status,
		exercise.TotalSteps,
		exercise.CurrentStepNumber,
		exercise.CurrentOwnerID,
		exercise.CreatedAt,
		exercise.UpdatedAt,
		exercise.CompletedAt,
	)

	return err
}

func (r *exerciseRepository) ByID(id string) (*model.Exercise, error) {
	exercise := &model.Exercise{}
	query := `SELECT * FROM exercises WHERE id = $1`

	err := r.db.Get(exercise, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrExerciseNotFound
	}

	return exercise, err
}

func (r *exerciseRepository) ByUser(userID, status string) ([]*model.Exercise, error) {
	var exercises []*model.Exercise

	query := `SELECT * FROM exercises WHERE (initiator_id = $1 OR partner_id = $1)`
	args := []any{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}

	query += ` ORDER BY updated_at DESC`

	err := r.db.Select(&exercises, query, args...)
	if err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *exerciseRepository) Update(exercise *model.Exercise) error {
	query := `UPDATE exercises
	          SET status = $1, total_steps = $2, current_step_number = $3,
	              current_owner_id = $4, completed_at = $5, updated_at = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query,
		exercise.Status,
		exercise.TotalSteps,
		exercise.CurrentStepNumber,
		exercise.CurrentOwnerID,
		exercise.CompletedAt,
		time.Now(),
		exercise.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrExerciseNotFound
	}

	return nil
}
