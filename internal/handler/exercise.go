package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/service"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type createExerciseRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	TemplateID  *string `json:"templateId"`
}

func (h *ExerciseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createExerciseRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exercise, err := h.exerciseService.Create(service.CreateExerciseInput{
		InitiatorID: user.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		TemplateID:  req.TemplateID,
	})
	if err != nil {
		h.writeExerciseError(w, err, "failed to create exercise")
		return
	}

	writeJSON(w, http.StatusCreated, exercise)
}

func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	exercises, err := h.exerciseService.Exercises(user.ID, r.URL.Query().Get("status"))
	if err != nil {
		h.writeExerciseError(w, err, "failed to list exercises")
		return
	}

	writeJSON(w, http.StatusOK, exercises)
}

func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	exercise, err := h.exerciseService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		h.writeExerciseError(w, err, "failed to load exercise")
		return
	}

	writeJSON(w, http.StatusOK, exercise)
}

func (h *ExerciseHandler) Steps(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	steps, err := h.exerciseService.Steps(user.ID, r.PathValue("id"))
	if err != nil {
		h.writeExerciseError(w, err, "failed to load steps")
		return
	}

	writeJSON(w, http.StatusOK, steps)
}

func (h *ExerciseHandler) Responses(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	responses, err := h.exerciseService.Responses(user.ID, r.PathValue("id"), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeExerciseError(w, err, "failed to load responses")
		return
	}

	writeJSON(w, http.StatusOK, responses)
}

type submitResponseRequest struct {
	Text     *string `json:"text"`
	Option   *string `json:"option"`
	AudioRef *string `json:"audioRef"`
}

func (h *ExerciseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req submitResponseRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.exerciseService.SubmitResponse(
		r.PathValue("id"),
		r.PathValue("stepId"),
		user.ID,
		service.ResponsePayload{
			Text:     req.Text,
			Option:   req.Option,
			AudioRef: req.AudioRef,
		},
	)
	if err != nil {
		h.writeExerciseError(w, err, "failed to submit response")
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *ExerciseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateStatusRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exercise, err := h.exerciseService.UpdateStatus(user.ID, r.PathValue("id"), req.Status)
	if err != nil {
		h.writeExerciseError(w, err, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, exercise)
}

type updateStepRequest struct {
	StepNumber int `json:"stepNumber"`
}

func (h *ExerciseHandler) UpdateCurrentStep(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateStepRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exercise, err := h.exerciseService.UpdateCurrentStep(user.ID, r.PathValue("id"), req.StepNumber)
	if err != nil {
		h.writeExerciseError(w, err, "failed to update current step")
		return
	}

	writeJSON(w, http.StatusOK, exercise)
}

// writeExerciseError maps engine errors to HTTP statuses. Turn and state
// violations are conflicts, authorization failures are forbidden.
func (h *ExerciseHandler) writeExerciseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrStepNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrExerciseNotActive),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrAlreadyResponded),
		errors.Is(err, service.ErrNoActivePartnership):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTemplateNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
