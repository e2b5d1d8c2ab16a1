package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
)

var (
	ErrTemplateNotFound = errors.New("exercise template not found")
)

type TemplateService struct {
	repo     repository.ExerciseTemplateRepository
	stepRepo repository.ExerciseStepRepository
}

func NewTemplateService(
	repo repository.ExerciseTemplateRepository,
	stepRepo repository.ExerciseStepRepository,
) *TemplateService {
	return &TemplateService{
		repo:     repo,
		stepRepo: stepRepo,
	}
}

func (s *TemplateService) Templates() ([]*model.ExerciseTemplate, error) {
	return s.repo.Templates()
}

func (s *TemplateService) ByID(templateID string) (*model.ExerciseTemplate, error) {
	template, err := s.repo.ByID(templateID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return nil, ErrTemplateNotFound
	}
	return template, err
}

// Materialize expands a template's step blueprints into persisted step
// records for one exercise, numbered 1..N in blueprint order. The blueprint
// JSON is a versionless schema: missing role defaults to "both", missing
// response kind to "text", unknown values are normalized the same way.
func (s *TemplateService) Materialize(exerciseID, templateID string) ([]*model.ExerciseStep, error) {
	template, err := s.repo.ByID(templateID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	var blueprints []model.StepBlueprint
	err = json.Unmarshal([]byte(template.Steps), &blueprints)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template steps: %w", err)
	}

	now := time.Now()
	steps := make([]*model.ExerciseStep, 0, len(blueprints))

	for i, blueprint := range blueprints {
		role := blueprint.Role
		if !model.ValidStepRole(role) {
			role = model.StepRoleBoth
		}

		kind := blueprint.ResponseKind
		if !model.ValidResponseKind(kind) {
			kind = model.ResponseKindText
		}

		step := &model.ExerciseStep{
			ID:              uuid.New().String(),
			ExerciseID:      exerciseID,
			StepNumber:      i + 1,
			Title:           blueprint.Title,
			Instructions:    blueprint.Instructions,
			Prompt:          blueprint.Prompt,
			ResponseKind:    kind,
			Role:            role,
			Required:        blueprint.Required,
			TimeEstimateMin: blueprint.TimeEstimateMin,
			CreatedAt:       now,
		}

		err = s.stepRepo.Create(step)
		if err != nil {
			return nil, fmt.Errorf("failed to create step %d: %w", step.StepNumber, err)
		}

		steps = append(steps, step)
	}

	return steps, nil
}
