package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrStepNotFound = errors.New("exercise step not found")
)

type ExerciseStepRepository interface {
	Create(step *model.ExerciseStep) error
	ByID(id string) (*model.ExerciseStep, error)
	ByExercise(exerciseID string) ([]*model.ExerciseStep, error)
	ByExerciseAndNumber(exerciseID string, stepNumber int) (*model.ExerciseStep, error)
}

type exerciseStepRepository struct {
	db *sqlx.DB
}

func NewExerciseStepRepository(db *sqlx.DB) ExerciseStepRepository {
	return &exerciseStepRepository{db: db}
}

func (r *exerciseStepRepository) Create(step *model.ExerciseStep) error {
	query := `INSERT INTO exercise_steps (id, exercise_id, step_number, title, instructions,
	              prompt, response_kind, role, required, time_estimate_min, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		step.ID,
		step.ExerciseID,
		step.StepNumber,
		step.Title,
		step.Instructions,
		step.Prompt,
		step.ResponseKind,
		step.Role,
		step.Required,
		step.TimeEstimateMin,
		step.CreatedAt,
	)

	return err
}

func (r *exerciseStepRepository) ByID(id string) (*model.ExerciseStep, error) {
	step := &model.ExerciseStep{}
	query := `SELECT * FROM exercise_steps WHERE id = $1`

	err := r.db.Get(step, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrStepNotFound
	}

	return step, err
}

func (r *exerciseStepRepository) ByExercise(exerciseID string) ([]*model.ExerciseStep, error) {
	var steps []*model.ExerciseStep
	query := `SELECT * FROM exercise_steps WHERE exercise_id = $1 ORDER BY step_number ASC`

	err := r.db.Select(&steps, query, exerciseID)
	if err != nil {
		return nil, err
	}

	return steps, nil
}

func (r *exerciseStepRepository) ByExerciseAndNumber(exerciseID string, stepNumber int) (*model.ExerciseStep, error) {
	step := &model.ExerciseStep{}
	query := `SELECT * FROM exercise_steps WHERE exercise_id = $1 AND step_number = $2`

	err := r.db.Get(step, query, exerciseID, stepNumber)
	if err == sql.ErrNoRows {
		return nil, ErrStepNotFound
	}

	return step, err
}
