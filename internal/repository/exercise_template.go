package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrTemplateNotFound = errors.New("exercise template not found")
)

type ExerciseTemplateRepository interface {
	ByID(id string) (*model.ExerciseTemplate, error)
	Templates() ([]*model.ExerciseTemplate, error)
}

type exerciseTemplateRepository struct {
	db *sqlx.DB
}

func NewExerciseTemplateRepository(db *sqlx.DB) ExerciseTemplateRepository {
	return &exerciseTemplateRepository{db: db}
}

func (r *exerciseTemplateRepository) ByID(id string) (*model.ExerciseTemplate, error) {
	template := &model.ExerciseTemplate{}
	query := `SELECT * FROM exercise_templates WHERE id = $1`

	err := r.db.Get(template, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}

	return template, err
}

func (r *exerciseTemplateRepository) Templates() ([]*model.ExerciseTemplate, error) {
	var templates []*model.ExerciseTemplate
	query := `SELECT * FROM exercise_templates ORDER BY title ASC`

	err := r.db.Select(&templates, query)
	if err != nil {
		return nil, err
	}

	return templates, nil
}
