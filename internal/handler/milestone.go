package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/repository"
	"github.com/usetandem/tandem/internal/service"
)

type MilestoneHandler struct {
	milestoneService *service.MilestoneService
}

func NewMilestoneHandler(milestoneService *service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

type milestoneRequest struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	OccurredOn string `json:"occurredOn"`
}

func (r milestoneRequest) occurredOn() (time.Time, error) {
	if r.OccurredOn == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", r.OccurredOn)
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req milestoneRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	occurredOn, err := req.occurredOn()
	if err != nil {
		writeError(w, http.StatusBadRequest, "occurredOn must be a YYYY-MM-DD date")
		return
	}

	milestone, err := h.milestoneService.Create(user.ID, req.Title, req.Notes, occurredOn)
	if err != nil {
		h.writeMilestoneError(w, err, "failed to create milestone")
		return
	}

	writeJSON(w, http.StatusCreated, milestone)
}

func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	milestones, err := h.milestoneService.Milestones(user.ID)
	if err != nil {
		h.writeMilestoneError(w, err, "failed to list milestones")
		return
	}

	writeJSON(w, http.StatusOK, milestones)
}

func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req milestoneRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	occurredOn, err := req.occurredOn()
	if err != nil {
		writeError(w, http.StatusBadRequest, "occurredOn must be a YYYY-MM-DD date")
		return
	}

	milestone, err := h.milestoneService.Update(user.ID, r.PathValue("id"), req.Title, req.Notes, occurredOn)
	if err != nil {
		h.writeMilestoneError(w, err, "failed to update milestone")
		return
	}

	writeJSON(w, http.StatusOK, milestone)
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.milestoneService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		h.writeMilestoneError(w, err, "failed to delete milestone")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *MilestoneHandler) writeMilestoneError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrMilestoneNotFound):
		writeError(w, http.StatusNotFound, "milestone not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoActivePartnership):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
