package repository

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	// ErrDuplicateResponse maps the UNIQUE(step_id, user_id) constraint.
	// The schema-level constraint closes the race between the service's
	// existence check and the insert.
	ErrDuplicateResponse = errors.New("response already exists for step and user")
)

type ExerciseResponseRepository interface {
	Create(response *model.ExerciseResponse) error
	Exists(stepID, userID string) (bool, error)
	ByStep(stepID string) ([]*model.ExerciseResponse, error)
	ByExercise(exerciseID, userID string) ([]*model.ExerciseResponse, error)
}

type exerciseResponseRepository struct {
	db *sqlx.DB
}

func NewExerciseResponseRepository(db *sqlx.DB) ExerciseResponseRepository {
	return &exerciseResponseRepository{db: db}
}

func (r *exerciseResponseRepository) Create(response *model.ExerciseResponse) error {
	query := `INSERT INTO exercise_responses (id, exercise_id, step_id, user_id,
	              response_text, response_option, audio_ref, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		response.ID,
		response.ExerciseID,
		response.StepID,
		response.UserID,
		response.ResponseText,
		response.ResponseOption,
		response.AudioRef,
		response.CreatedAt,
	)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateResponse
	}

	return err
}

func (r *exerciseResponseRepository) Exists(stepID, userID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM exercise_responses WHERE step_id = $1 AND user_id = $2`

	err := r.db.QueryRow(query, stepID, userID).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *exerciseResponseRepository) ByStep(stepID string) ([]*model.ExerciseResponse, error) {
	var responses []*model.ExerciseResponse
	query := `SELECT * FROM exercise_responses WHERE step_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&responses, query, stepID)
	if err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *exerciseResponseRepository) ByExercise(exerciseID, userID string) ([]*model.ExerciseResponse, error) {
	var responses []*model.ExerciseResponse

	query := `SELECT * FROM exercise_responses WHERE exercise_id = $1`
	args := []any{exerciseID}

	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}

	query += ` ORDER BY created_at ASC`

	err := r.db.Select(&responses, query, args...)
	if err != nil {
		return nil, err
	}

	return responses, nil
}

// isUniqueViolation detects unique-constraint failures for both supported
// drivers (sqlite error text, postgres SQLSTATE 23505 text).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value")
}
