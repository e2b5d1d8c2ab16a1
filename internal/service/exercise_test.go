package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/notify"
	"github.com/usetandem/tandem/internal/repository"
)

type fakeExerciseRepo struct {
	exercises map[string]*model.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[string]*model.Exercise)}
}

func (r *fakeExerciseRepo) Create(exercise *model.Exercise) error {
	r.exercises[exercise.ID] = exercise
	return nil
}

func (r *fakeExerciseRepo) ByID(id string) (*model.Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrExerciseNotFound
	}
	return exercise, nil
}

func (r *fakeExerciseRepo) ByUser(userID, status string) ([]*model.Exercise, error) {
	var out []*model.Exercise
	for _, exercise := range r.exercises {
		if !exercise.IsParticipant(userID) {
			continue
		}
		if status != "" && exercise.Status != status {
			continue
		}
		out = append(out, exercise)
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(exercise *model.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrExerciseNotFound
	}
	r.exercises[exercise.ID] = exercise
	return nil
}

type fakeStepRepo struct {
	steps []*model.ExerciseStep
}

func (r *fakeStepRepo) Create(step *model.ExerciseStep) error {
	r.steps = append(r.steps, step)
	return nil
}

func (r *fakeStepRepo) ByID(id string) (*model.ExerciseStep, error) {
	for _, step := range r.steps {
		if step.ID == id {
			return step, nil
		}
	}
	return nil, repository.ErrStepNotFound
}

func (r *fakeStepRepo) ByExercise(exerciseID string) ([]*model.ExerciseStep, error) {
	var out []*model.ExerciseStep
	for _, step := range r.steps {
		if step.ExerciseID == exerciseID {
			out = append(out, step)
		}
	}
	return out, nil
}

func (r *fakeStepRepo) ByExerciseAndNumber(exerciseID string, stepNumber int) (*model.ExerciseStep, error) {
	for _, step := range r.steps {
		if step.ExerciseID == exerciseID && step.StepNumber == stepNumber {
			return step, nil
		}
	}
	return nil, repository.ErrStepNotFound
}

type fakeResponseRepo struct {
	responses []*model.ExerciseResponse
}

func (r *fakeResponseRepo) Create(response *model.ExerciseResponse) error {
	for _, existing := range r.responses {
		if existing.StepID == response.StepID && existing.UserID == response.UserID {
			return repository.ErrDuplicateResponse
		}
	}
	r.responses = append(r.responses, response)
	return nil
}

func (r *fakeResponseRepo) Exists(stepID, userID string) (bool, error) {
	for _, existing := range r.responses {
		if existing.StepID == stepID && existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResponseRepo) ByStep(stepID string) ([]*model.ExerciseResponse, error) {
	var out []*model.ExerciseResponse
	for _, response := range r.responses {
		if response.StepID == stepID {
			out = append(out, response)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) ByExercise(exerciseID, userID string) ([]*model.ExerciseResponse, error) {
	var out []*model.ExerciseResponse
	for _, response := range r.responses {
		if response.ExerciseID != exerciseID {
			continue
		}
		if userID != "" && response.UserID != userID {
			continue
		}
		out = append(out, response)
	}
	return out, nil
}

type fakeResolver struct {
	partnershipID string
	partnerID     string
	err           error
}

func (r *fakeResolver) Resolve(userID string) (string, string, error) {
	if r.err != nil {
		return "", "", r.err
	}
	return r.partnershipID, r.partnerID, nil
}

type fakeMaterializer struct {
	steps []*model.ExerciseStep
	err   error
}

func (m *fakeMaterializer) Materialize(exerciseID, templateID string) ([]*model.ExerciseStep, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.steps, nil
}

type dispatched struct {
	userID string
	event  notify.Event
}

type fakeDispatcher struct {
	events []dispatched
}

func (d *fakeDispatcher) Dispatch(userID string, event notify.Event) {
	d.events = append(d.events, dispatched{userID: userID, event: event})
}

func (d *fakeDispatcher) last() dispatched {
	return d.events[len(d.events)-1]
}

const (
	userOne = "user-1"
	userTwo = "user-2"
)

type engineFixture struct {
	service    *ExerciseService
	repo       *fakeExerciseRepo
	stepRepo   *fakeStepRepo
	responses  *fakeResponseRepo
	dispatcher *fakeDispatcher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	repo := newFakeExerciseRepo()
	stepRepo := &fakeStepRepo{}
	responses := &fakeResponseRepo{}
	dispatcher := &fakeDispatcher{}
	resolver := &fakeResolver{partnershipID: "partnership-1", partnerID: userTwo}

	svc := NewExerciseService(repo, stepRepo, responses, resolver, &fakeMaterializer{}, dispatcher)

	return &engineFixture{
		service:    svc,
		repo:       repo,
		stepRepo:   stepRepo,
		responses:  responses,
		dispatcher: dispatcher,
	}
}

// seedExercise creates an in-progress exercise with one step per role given,
// owned by userOne on step 1.
func (f *engineFixture) seedExercise(t *testing.T, roles ...string) *model.Exercise {
	t.Helper()

	owner := userOne
	exercise := &model.Exercise{
		ID:                uuid.New().String(),
		PartnershipID:     "partnership-1",
		InitiatorID:       userOne,
		PartnerID:         userTwo,
		Title:             "Daily appreciation",
		Status:            model.ExerciseStatusInProgress,
		TotalSteps:        len(roles),
		CurrentStepNumber: 1,
		CurrentOwnerID:    &owner,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	require.NoError(t, f.repo.Create(exercise))

	for i, role := range roles {
		require.NoError(t, f.stepRepo.Create(&model.ExerciseStep{
			ID:           uuid.New().String(),
			ExerciseID:   exercise.ID,
			StepNumber:   i + 1,
			Title:        "Step",
			ResponseKind: model.ResponseKindText,
			Role:         role,
			Required:     true,
		}))
	}

	return exercise
}

func (f *engineFixture) step(t *testing.T, exerciseID string, number int) *model.ExerciseStep {
	t.Helper()
	step, err := f.stepRepo.ByExerciseAndNumber(exerciseID, number)
	require.NoError(t, err)
	return step
}

func textPayload(s string) ResponsePayload {
	return ResponsePayload{Text: &s}
}

func TestCreateExercise(t *testing.T) {
	f := newEngineFixture(t)

	exercise, err := f.service.Create(CreateExerciseInput{
		InitiatorID: userOne,
		Title:       "Daily appreciation",
		Type:        "appreciation",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ExerciseStatusInProgress, exercise.Status)
	assert.Equal(t, 1, exercise.CurrentStepNumber)
	require.NotNil(t, exercise.CurrentOwnerID)
	assert.Equal(t, userOne, *exercise.CurrentOwnerID)

	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, userTwo, f.dispatcher.events[0].userID)
	assert.Equal(t, notify.EventNewExercise, f.dispatcher.events[0].event.Type)
}

func TestCreateExerciseTitleRequired(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.service.Create(CreateExerciseInput{InitiatorID: userOne})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestCreateExerciseWithoutPartnership(t *testing.T) {
	repo := newFakeExerciseRepo()
	svc := NewExerciseService(repo, &fakeStepRepo{}, &fakeResponseRepo{},
		&fakeResolver{err: ErrNoActivePartnership}, &fakeMaterializer{}, &fakeDispatcher{})

	_, err := svc.Create(CreateExerciseInput{InitiatorID: userOne, Title: "t"})
	assert.ErrorIs(t, err, ErrNoActivePartnership)
	assert.Empty(t, repo.exercises)
}

func TestCreateExerciseMaterializesTemplate(t *testing.T) {
	f := newEngineFixture(t)

	templateID := "tmpl-1"
	materializer := &fakeMaterializer{steps: []*model.ExerciseStep{
		{ID: "s1", StepNumber: 1, Role: model.StepRoleBoth},
		{ID: "s2", StepNumber: 2, Role: model.StepRoleBoth},
	}}
	f.service.materializer = materializer

	exercise, err := f.service.Create(CreateExerciseInput{
		InitiatorID: userOne,
		Title:       "Templated",
		TemplateID:  &templateID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, exercise.TotalSteps)
}

func TestCreateExerciseAbandonedOnMaterializationFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.service.materializer = &fakeMaterializer{err: ErrTemplateNotFound}

	templateID := "missing"
	_, err := f.service.Create(CreateExerciseInput{
		InitiatorID: userOne,
		Title:       "Templated",
		TemplateID:  &templateID,
	})
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// The created row is abandoned, not deleted.
	require.Len(t, f.repo.exercises, 1)
	for _, exercise := range f.repo.exercises {
		assert.Equal(t, model.ExerciseStatusAbandoned, exercise.Status)
		assert.Nil(t, exercise.CurrentOwnerID)
	}
}

func TestSubmitResponsePreconditions(t *testing.T) {
	t.Run("exercise not found", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.service.SubmitResponse("missing", "step", userOne, textPayload("hi"))
		assert.ErrorIs(t, err, ErrExerciseNotFound)
	})

	t.Run("not a participant", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		_, err := f.service.SubmitResponse(exercise.ID, "step", "stranger", textPayload("hi"))
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("not active", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		exercise.Status = model.ExerciseStatusCompleted
		_, err := f.service.SubmitResponse(exercise.ID, "step", userOne, textPayload("hi"))
		assert.ErrorIs(t, err, ErrExerciseNotActive)
	})

	t.Run("not your turn", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		_, err := f.service.SubmitResponse(exercise.ID, "step", userTwo, textPayload("hi"))
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("step not found", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		_, err := f.service.SubmitResponse(exercise.ID, "missing-step", userOne, textPayload("hi"))
		assert.ErrorIs(t, err, ErrStepNotFound)
	})

	t.Run("step of another exercise", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		other := f.seedExercise(t, model.StepRoleBoth)
		foreign := f.step(t, other.ID, 1)
		_, err := f.service.SubmitResponse(exercise.ID, foreign.ID, userOne, textPayload("hi"))
		assert.ErrorIs(t, err, ErrStepNotFound)
	})

	t.Run("already responded", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth, model.StepRoleBoth)
		step := f.step(t, exercise.ID, 1)

		_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("hi"))
		require.NoError(t, err)

		// Turn passed to userTwo; hand it back without a second response so
		// only the duplicate check can fire.
		owner := userOne
		exercise.CurrentOwnerID = &owner

		_, err = f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("again"))
		assert.ErrorIs(t, err, ErrAlreadyResponded)
	})

	t.Run("invalid payload", func(t *testing.T) {
		f := newEngineFixture(t)
		exercise := f.seedExercise(t, model.StepRoleBoth)
		step := f.step(t, exercise.ID, 1)

		_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, ResponsePayload{})
		assert.ErrorIs(t, err, ErrInvalidPayload)

		text, option := "a", "b"
		_, err = f.service.SubmitResponse(exercise.ID, step.ID, userOne, ResponsePayload{Text: &text, Option: &option})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestSubmitResponseBothRolePassesTurn(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth, model.StepRoleBoth)
	step := f.step(t, exercise.ID, 1)

	response, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("mine"))
	require.NoError(t, err)
	assert.Equal(t, userOne, response.UserID)

	// Same step, other participant's turn.
	assert.Equal(t, 1, exercise.CurrentStepNumber)
	require.NotNil(t, exercise.CurrentOwnerID)
	assert.Equal(t, userTwo, *exercise.CurrentOwnerID)

	last := f.dispatcher.last()
	assert.Equal(t, userTwo, last.userID)
	assert.Equal(t, notify.EventExerciseYourTurn, last.event.Type)
}

func TestSubmitResponseBothRoleAdvancesWhenSatisfied(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth, model.StepRoleBoth)
	step := f.step(t, exercise.ID, 1)

	_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("one"))
	require.NoError(t, err)
	_, err = f.service.SubmitResponse(exercise.ID, step.ID, userTwo, textPayload("two"))
	require.NoError(t, err)

	// Step satisfied: advance to 2, owner is the partner of the last
	// responder under the default policy.
	assert.Equal(t, 2, exercise.CurrentStepNumber)
	require.NotNil(t, exercise.CurrentOwnerID)
	assert.Equal(t, userOne, *exercise.CurrentOwnerID)

	last := f.dispatcher.last()
	assert.Equal(t, userOne, last.userID)
	assert.Equal(t, notify.EventExerciseYourTurn, last.event.Type)
}

func TestSubmitResponseSingleRoleSteps(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleInitiator, model.StepRolePartner, model.StepRoleInitiator)

	stepOne := f.step(t, exercise.ID, 1)
	_, err := f.service.SubmitResponse(exercise.ID, stepOne.ID, userOne, textPayload("a"))
	require.NoError(t, err)

	// Partner-role step belongs to the partner.
	assert.Equal(t, 2, exercise.CurrentStepNumber)
	assert.Equal(t, userTwo, *exercise.CurrentOwnerID)

	stepTwo := f.step(t, exercise.ID, 2)
	_, err = f.service.SubmitResponse(exercise.ID, stepTwo.ID, userTwo, textPayload("b"))
	require.NoError(t, err)

	assert.Equal(t, 3, exercise.CurrentStepNumber)
	assert.Equal(t, userOne, *exercise.CurrentOwnerID)
}

func TestSubmitResponseCompletesExercise(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleInitiator)
	step := f.step(t, exercise.ID, 1)

	_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("done"))
	require.NoError(t, err)

	assert.Equal(t, model.ExerciseStatusCompleted, exercise.Status)
	assert.NotNil(t, exercise.CompletedAt)
	assert.Nil(t, exercise.CurrentOwnerID)

	last := f.dispatcher.last()
	assert.Equal(t, userTwo, last.userID)
	assert.Equal(t, notify.EventExerciseCompleted, last.event.Type)

	// Completed exercises accept no further responses.
	_, err = f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("more"))
	assert.ErrorIs(t, err, ErrExerciseNotActive)
}

func TestSubmitResponseCustomTurnPolicy(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleInitiator, model.StepRoleBoth)

	// Keep the responder on the hook instead of the partner.
	f.service.SetTurnPolicy(func(e *model.Exercise, responderID string) string {
		return responderID
	})

	step := f.step(t, exercise.ID, 1)
	_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("a"))
	require.NoError(t, err)

	assert.Equal(t, 2, exercise.CurrentStepNumber)
	assert.Equal(t, userOne, *exercise.CurrentOwnerID)

	// Owner unchanged, so no your-turn event for the second step.
	for _, d := range f.dispatcher.events {
		assert.NotEqual(t, notify.EventExerciseYourTurn, d.event.Type)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth)

	updated, err := f.service.UpdateStatus(userTwo, exercise.ID, model.ExerciseStatusAbandoned)
	require.NoError(t, err)
	assert.Equal(t, model.ExerciseStatusAbandoned, updated.Status)

	_, err = f.service.UpdateStatus(userOne, exercise.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.service.UpdateStatus("stranger", exercise.ID, model.ExerciseStatusCompleted)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestUpdateStatusCompletedSetsTimestamp(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth)

	updated, err := f.service.UpdateStatus(userOne, exercise.ID, model.ExerciseStatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)
	assert.Nil(t, updated.CurrentOwnerID)
}

func TestUpdateCurrentStep(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth, model.StepRolePartner, model.StepRoleBoth)

	updated, err := f.service.UpdateCurrentStep(userOne, exercise.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentStepNumber)
	// Partner-role step always belongs to the partner.
	assert.Equal(t, userTwo, *updated.CurrentOwnerID)

	last := f.dispatcher.last()
	assert.Equal(t, userTwo, last.userID)
	assert.Equal(t, notify.EventExerciseStep, last.event.Type)

	// Jumping to a "both" step re-derives the owner via the turn policy
	// from the previous owner.
	updated, err = f.service.UpdateCurrentStep(userOne, exercise.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStepNumber)
	assert.Equal(t, userOne, *updated.CurrentOwnerID)
}

func TestUpdateCurrentStepErrors(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth)

	_, err := f.service.UpdateCurrentStep(userOne, exercise.ID, 99)
	assert.ErrorIs(t, err, ErrStepNotFound)

	exercise.Status = model.ExerciseStatusAbandoned
	_, err = f.service.UpdateCurrentStep(userOne, exercise.ID, 1)
	assert.ErrorIs(t, err, ErrExerciseNotActive)
}

func TestExercisesStatusFilter(t *testing.T) {
	f := newEngineFixture(t)
	f.seedExercise(t, model.StepRoleBoth)
	completed := f.seedExercise(t, model.StepRoleBoth)
	completed.Status = model.ExerciseStatusCompleted

	active, err := f.service.Exercises(userOne, model.ExerciseStatusInProgress)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = f.service.Exercises(userOne, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResponsesRequireParticipant(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth)

	_, err := f.service.Responses("stranger", exercise.ID, "")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.service.Steps("stranger", exercise.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.service.ByID("stranger", exercise.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

// racyResponseRepo reports no existing response but fails the insert with a
// unique violation, modeling a concurrent submit landing in between.
type racyResponseRepo struct {
	fakeResponseRepo
}

func (r *racyResponseRepo) Exists(stepID, userID string) (bool, error) {
	return false, nil
}

func (r *racyResponseRepo) Create(response *model.ExerciseResponse) error {
	return repository.ErrDuplicateResponse
}

func TestDuplicateResponseRace(t *testing.T) {
	f := newEngineFixture(t)
	exercise := f.seedExercise(t, model.StepRoleBoth)
	step := f.step(t, exercise.ID, 1)

	f.service.responseRepo = &racyResponseRepo{}

	_, err := f.service.SubmitResponse(exercise.ID, step.ID, userOne, textPayload("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyResponded))
}
