package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/service"
)

type AudioHandler struct {
	audioService *service.AudioService
}

func NewAudioHandler(audioService *service.AudioService) *AudioHandler {
	return &AudioHandler{audioService: audioService}
}

type uploadURLRequest struct {
	ContentType string `json:"contentType"`
}

// UploadURL returns a presigned PUT URL plus the audioRef to submit with
// the step response once the upload finishes.
func (h *AudioHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req uploadURLRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, url, err := h.audioService.UploadURL(r.Context(), user.ID, req.ContentType)
	if err != nil {
		h.writeAudioError(w, err, "failed to create upload URL")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"audioRef":  ref,
		"uploadUrl": url,
	})
}

func (h *AudioHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")

	url, err := h.audioService.DownloadURL(r.Context(), ref)
	if err != nil {
		h.writeAudioError(w, err, "failed to create download URL")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"downloadUrl": url})
}

func (h *AudioHandler) writeAudioError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrAudioUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrUnsupportedFormat), errors.Is(err, service.ErrInvalidAudioRef):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
