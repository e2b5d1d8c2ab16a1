package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/repository"
	"github.com/usetandem/tandem/internal/service"
)

type JournalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

type journalEntryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Mood  string `json:"mood"`
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req journalEntryRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.journalService.Create(user.ID, req.Title, req.Body, req.Mood)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create journal entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create journal entry")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	entries, err := h.journalService.Entries(user.ID)
	if err != nil {
		slog.Error("failed to list journal entries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list journal entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	entry, err := h.journalService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		h.writeJournalError(w, err, "failed to load journal entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req journalEntryRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.journalService.Update(user.ID, r.PathValue("id"), req.Title, req.Body, req.Mood)
	if err != nil {
		h.writeJournalError(w, err, "failed to update journal entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.journalService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		h.writeJournalError(w, err, "failed to delete journal entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *JournalHandler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	entry, err := h.journalService.GenerateInsight(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		h.writeJournalError(w, err, "failed to generate insight")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) writeJournalError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, repository.ErrJournalEntryNotFound) {
		writeError(w, http.StatusNotFound, "journal entry not found")
		return
	}
	slog.Error(fallback, "error", err)
	writeError(w, http.StatusInternalServerError, fallback)
}
