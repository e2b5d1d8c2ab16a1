package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req sendMessageRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.Send(user.ID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoActivePartnership):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to send message", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := h.messageService.Messages(user.ID, limit)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePartnership) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

type reframeRequest struct {
	Body string `json:"body"`
}

func (h *MessageHandler) Reframe(w http.ResponseWriter, r *http.Request) {
	var req reframeRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reframed, err := h.messageService.Reframe(r.Context(), req.Body)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to reframe message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reframe message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reframed": reframed})
}
