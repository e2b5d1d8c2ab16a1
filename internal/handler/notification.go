package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/service"
)

type NotificationHandler struct {
	settingsService *service.NotificationSettingsService
	vapidPublicKey  string
}

func NewNotificationHandler(settingsService *service.NotificationSettingsService, vapidPublicKey string) *NotificationHandler {
	return &NotificationHandler{
		settingsService: settingsService,
		vapidPublicKey:  vapidPublicKey,
	}
}

func (h *NotificationHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	preferences, err := h.settingsService.Preferences(user.ID)
	if err != nil {
		slog.Error("failed to load preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	writeJSON(w, http.StatusOK, preferences)
}

type setPreferenceRequest struct {
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`
}

func (h *NotificationHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req setPreferenceRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.settingsService.SetPreference(user.ID, req.Category, req.Enabled)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to set preference", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set preference")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"category": req.Category, "enabled": req.Enabled})
}

// VAPIDKey exposes the public key browsers need to create a push
// subscription.
func (h *NotificationHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.vapidPublicKey})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req subscribeRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subscription, err := h.settingsService.Subscribe(user.ID, req.Endpoint, req.P256dh, req.Auth)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubscription) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to store subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store subscription")
		return
	}

	writeJSON(w, http.StatusCreated, subscription)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req unsubscribeRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.settingsService.Unsubscribe(user.ID, req.Endpoint)
	if err != nil {
		slog.Error("failed to remove subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
