package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/notify"
	"github.com/usetandem/tandem/internal/observability"
	"github.com/usetandem/tandem/internal/repository"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrNotParticipant    = errors.New("user is not a participant of this exercise")
	ErrExerciseNotActive = errors.New("exercise is not in progress")
	ErrNotYourTurn       = errors.New("it is not this user's turn")
	ErrStepNotFound      = errors.New("step not found for this exercise")
	ErrAlreadyResponded  = errors.New("user already responded to this step")
	ErrInvalidPayload    = errors.New("exactly one of text, option or audio must be set")
	ErrInvalidStatus     = errors.New("invalid exercise status")
	ErrTitleRequired     = errors.New("title is required")
)

// PartnerResolver supplies a user's counterpart in their active partnership.
type PartnerResolver interface {
	Resolve(userID string) (partnershipID, partnerID string, err error)
}

// StepMaterializer expands a template into persisted steps for an exercise.
type StepMaterializer interface {
	Materialize(exerciseID, templateID string) ([]*model.ExerciseStep, error)
}

// EventDispatcher delivers events to a user. Delivery is best-effort and
// must never fail the calling operation.
type EventDispatcher interface {
	Dispatch(userID string, event notify.Event)
}

// TurnPolicy picks the owner of a newly reached step whose role is "both".
// The responder argument is whoever triggered the advancement.
type TurnPolicy func(exercise *model.Exercise, responderID string) string

// PartnerOfResponder gives the next prompt to the other voice first: the
// new owner is the partner of whoever just answered.
func PartnerOfResponder(exercise *model.Exercise, responderID string) string {
	return exercise.OtherParticipant(responderID)
}

// ExerciseService owns the exercise state machine: creation, turn
// validation, response recording, step advancement and completion.
type ExerciseService struct {
	repo         repository.ExerciseRepository
	stepRepo     repository.ExerciseStepRepository
	responseRepo repository.ExerciseResponseRepository
	resolver     PartnerResolver
	materializer StepMaterializer
	dispatcher   EventDispatcher
	turnPolicy   TurnPolicy
}

func NewExerciseService(
	repo repository.ExerciseRepository,
	stepRepo repository.ExerciseStepRepository,
	responseRepo repository.ExerciseResponseRepository,
	resolver PartnerResolver,
	materializer StepMaterializer,
	dispatcher EventDispatcher,
) *ExerciseService {
	return &ExerciseService{
		repo:         repo,
		stepRepo:     stepRepo,
		responseRepo: responseRepo,
		resolver:     resolver,
		materializer: materializer,
		dispatcher:   dispatcher,
		turnPolicy:   PartnerOfResponder,
	}
}

// SetTurnPolicy overrides the default next-owner policy for steps whose
// role is "both".
func (s *ExerciseService) SetTurnPolicy(policy TurnPolicy) {
	if policy != nil {
		s.turnPolicy = policy
	}
}

type CreateExerciseInput struct {
	InitiatorID string
	Title       string
	Description string
	Type        string
	TemplateID  *string
}

// Create starts a new exercise for the initiator's active partnership. The
// initiator owns the first turn. When a template is given its steps are
// materialized synchronously before returning.
func (s *ExerciseService) Create(input CreateExerciseInput) (*model.Exercise, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	partnershipID, partnerID, err := s.resolver.Resolve(input.InitiatorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ownerID := input.InitiatorID
	exercise := &model.Exercise{
		ID:                uuid.New().String(),
		PartnershipID:     partnershipID,
		InitiatorID:       input.InitiatorID,
		PartnerID:         partnerID,
		TemplateID:        input.TemplateID,
		Title:             input.Title,
		Description:       input.Description,
		Type:              input.Type,
		Status:            model.ExerciseStatusInProgress,
		TotalSteps:        0,
		CurrentStepNumber: 1,
		CurrentOwnerID:    &ownerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.repo.Create(exercise)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}

	if input.TemplateID != nil {
		steps, err := s.materializer.Materialize(exercise.ID, *input.TemplateID)
		if err != nil {
			// The exercise row exists but is unusable; abandon it rather
			// than leave a dangling in-progress instance.
			exercise.Status = model.ExerciseStatusAbandoned
			exercise.CurrentOwnerID = nil
			updateErr := s.repo.Update(exercise)
			if updateErr != nil {
				slog.Error("failed to abandon exercise after materialization failure", "error", updateErr, "exercise_id", exercise.ID)
			}
			return nil, err
		}

		exercise.TotalSteps = len(steps)
		err = s.repo.Update(exercise)
		if err != nil {
			return nil, fmt.Errorf("failed to update step count: %w", err)
		}
	}

	s.dispatcher.Dispatch(partnerID, notify.Event{
		Type:       notify.EventNewExercise,
		Title:      exercise.Title,
		ExerciseID: exercise.ID,
		ActorID:    input.InitiatorID,
	})

	return exercise, nil
}

// ByID returns an exercise to one of its participants.
func (s *ExerciseService) ByID(userID, exerciseID string) (*model.Exercise, error) {
	return s.participantExercise(userID, exerciseID)
}

// Exercises lists a user's exercises, optionally filtered by status.
func (s *ExerciseService) Exercises(userID, status string) ([]*model.Exercise, error) {
	if status != "" && !model.ValidExerciseStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ByUser(userID, status)
}

// Steps lists the materialized steps of an exercise in order.
func (s *ExerciseService) Steps(userID, exerciseID string) ([]*model.ExerciseStep, error) {
	_, err := s.participantExercise(userID, exerciseID)
	if err != nil {
		return nil, err
	}
	return s.stepRepo.ByExercise(exerciseID)
}

// Responses lists responses for an exercise, optionally for one user.
func (s *ExerciseService) Responses(userID, exerciseID, filterUserID string) ([]*model.ExerciseResponse, error) {
	_, err := s.participantExercise(userID, exerciseID)
	if err != nil {
		return nil, err
	}
	return s.responseRepo.ByExercise(exerciseID, filterUserID)
}

// ResponsePayload carries a participant's answer. Exactly one field must be
// populated.
type ResponsePayload struct {
	Text     *string
	Option   *string
	AudioRef *string
}

func (p ResponsePayload) populated() int {
	count := 0
	if p.Text != nil && *p.Text != "" {
		count++
	}
	if p.Option != nil && *p.Option != "" {
		count++
	}
	if p.AudioRef != nil && *p.AudioRef != "" {
		count++
	}
	return count
}

// SubmitResponse records a participant's answer and advances the exercise.
// Preconditions are checked in a fixed order; each violation is a distinct
// error so callers can report exactly what was wrong.
func (s *ExerciseService) SubmitResponse(exerciseID, stepID, userID string, payload ResponsePayload) (*model.ExerciseResponse, error) {
	exercise, err := s.repo.ByID(exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to load exercise: %w", err)
	}

	if !exercise.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if !exercise.IsActive() {
		return nil, ErrExerciseNotActive
	}

	if exercise.CurrentOwnerID == nil || *exercise.CurrentOwnerID != userID {
		return nil, ErrNotYourTurn
	}

	step, err := s.stepRepo.ByID(stepID)
	if err != nil {
		if errors.Is(err, repository.ErrStepNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to load step: %w", err)
	}
	if step.ExerciseID != exerciseID {
		return nil, ErrStepNotFound
	}

	exists, err := s.responseRepo.Exists(stepID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	if exists {
		return nil, ErrAlreadyResponded
	}

	if payload.populated() != 1 {
		return nil, ErrInvalidPayload
	}

	response := &model.ExerciseResponse{
		ID:             uuid.New().String(),
		ExerciseID:     exerciseID,
		StepID:         stepID,
		UserID:         userID,
		ResponseText:   payload.Text,
		ResponseOption: payload.Option,
		AudioRef:       payload.AudioRef,
		CreatedAt:      time.Now(),
	}

	err = s.responseRepo.Create(response)
	if err != nil {
		// The schema-level unique constraint closes the race between the
		// existence check above and this insert.
		if errors.Is(err, repository.ErrDuplicateResponse) {
			return nil, ErrAlreadyResponded
		}
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	err = s.advance(exercise, step, userID)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// advance runs the step-advancement algorithm after a response was
// recorded: pass the turn within the same step, move to the next step, or
// complete the exercise.
func (s *ExerciseService) advance(exercise *model.Exercise, step *model.ExerciseStep, responderID string) error {
	satisfied, err := s.stepSatisfied(exercise, step)
	if err != nil {
		return err
	}

	if !satisfied {
		// Role "both" with only one side answered: same step, turn passes
		// to the other participant.
		other := exercise.OtherParticipant(responderID)
		exercise.CurrentOwnerID = &other

		err = s.repo.Update(exercise)
		if err != nil {
			return fmt.Errorf("failed to pass turn: %w", err)
		}

		s.dispatcher.Dispatch(other, notify.Event{
			Type:       notify.EventExerciseYourTurn,
			Title:      exercise.Title,
			ExerciseID: exercise.ID,
			ActorID:    responderID,
		})
		return nil
	}

	next, err := s.stepRepo.ByExerciseAndNumber(exercise.ID, step.StepNumber+1)
	if err != nil {
		if errors.Is(err, repository.ErrStepNotFound) {
			return s.complete(exercise, responderID)
		}
		return fmt.Errorf("failed to load next step: %w", err)
	}

	owner := s.ownerForStep(next, exercise, responderID)
	exercise.CurrentStepNumber = next.StepNumber
	exercise.CurrentOwnerID = &owner

	err = s.repo.Update(exercise)
	if err != nil {
		return fmt.Errorf("failed to advance step: %w", err)
	}

	if owner != responderID {
		s.dispatcher.Dispatch(owner, notify.Event{
			Type:       notify.EventExerciseYourTurn,
			Title:      exercise.Title,
			ExerciseID: exercise.ID,
			ActorID:    responderID,
		})
	}

	return nil
}

// stepSatisfied reports whether the step's completion condition holds: a
// "both" step needs a response from each participant, any other role is
// satisfied by a single response.
func (s *ExerciseService) stepSatisfied(exercise *model.Exercise, step *model.ExerciseStep) (bool, error) {
	if step.Role != model.StepRoleBoth {
		return true, nil
	}

	responses, err := s.responseRepo.ByStep(step.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load step responses: %w", err)
	}

	var fromInitiator, fromPartner bool
	for _, response := range responses {
		if response.UserID == exercise.InitiatorID {
			fromInitiator = true
		}
		if response.UserID == exercise.PartnerID {
			fromPartner = true
		}
	}

	return fromInitiator && fromPartner, nil
}

func (s *ExerciseService) complete(exercise *model.Exercise, responderID string) error {
	now := time.Now()
	exercise.Status = model.ExerciseStatusCompleted
	exercise.CompletedAt = &now
	exercise.CurrentOwnerID = nil

	err := s.repo.Update(exercise)
	if err != nil {
		return fmt.Errorf("failed to complete exercise: %w", err)
	}

	observability.ExercisesCompleted.Inc()

	// The responder already knows; tell the other participant.
	s.dispatcher.Dispatch(exercise.OtherParticipant(responderID), notify.Event{
		Type:       notify.EventExerciseCompleted,
		Title:      exercise.Title,
		ExerciseID: exercise.ID,
		ActorID:    responderID,
	})

	return nil
}

// ownerForStep resolves who owns a newly current step: a single-role step
// belongs to that participant, a "both" step goes to whoever the turn
// policy picks.
func (s *ExerciseService) ownerForStep(step *model.ExerciseStep, exercise *model.Exercise, previousUserID string) string {
	switch step.Role {
	case model.StepRoleInitiator:
		return exercise.InitiatorID
	case model.StepRolePartner:
		return exercise.PartnerID
	default:
		return s.turnPolicy(exercise, previousUserID)
	}
}

// UpdateStatus is an explicit status override (for example abandoning an
// exercise), used outside the step-advancement path.
func (s *ExerciseService) UpdateStatus(userID, exerciseID, status string) (*model.Exercise, error) {
	if !model.ValidExerciseStatus(status) {
		return nil, ErrInvalidStatus
	}

	exercise, err := s.participantExercise(userID, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Status = status
	if status == model.ExerciseStatusCompleted && exercise.CompletedAt == nil {
		now := time.Now()
		exercise.CompletedAt = &now
		exercise.CurrentOwnerID = nil
	}

	err = s.repo.Update(exercise)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return exercise, nil
}

// UpdateCurrentStep is an administrative jump to a step (for example when
// resuming). The owner is re-derived from the step's role; for "both" the
// turn policy is applied to the previous owner.
func (s *ExerciseService) UpdateCurrentStep(userID, exerciseID string, stepNumber int) (*model.Exercise, error) {
	exercise, err := s.participantExercise(userID, exerciseID)
	if err != nil {
		return nil, err
	}

	if !exercise.IsActive() {
		return nil, ErrExerciseNotActive
	}

	step, err := s.stepRepo.ByExerciseAndNumber(exerciseID, stepNumber)
	if err != nil {
		if errors.Is(err, repository.ErrStepNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to load step: %w", err)
	}

	previousOwner := exercise.InitiatorID
	if exercise.CurrentOwnerID != nil {
		previousOwner = *exercise.CurrentOwnerID
	}

	owner := s.ownerForStep(step, exercise, previousOwner)
	exercise.CurrentStepNumber = step.StepNumber
	exercise.CurrentOwnerID = &owner

	err = s.repo.Update(exercise)
	if err != nil {
		return nil, fmt.Errorf("failed to update current step: %w", err)
	}

	s.dispatcher.Dispatch(exercise.OtherParticipant(userID), notify.Event{
		Type:       notify.EventExerciseStep,
		Title:      exercise.Title,
		ExerciseID: exercise.ID,
		ActorID:    userID,
	})

	return exercise, nil
}

func (s *ExerciseService) participantExercise(userID, exerciseID string) (*model.Exercise, error) {
	exercise, err := s.repo.ByID(exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to load exercise: %w", err)
	}

	if !exercise.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return exercise, nil
}
