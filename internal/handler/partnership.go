package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/usetandem/tandem/internal/ctxkeys"
	"github.com/usetandem/tandem/internal/service"
)

type PartnershipHandler struct {
	partnershipService *service.PartnershipService
}

func NewPartnershipHandler(partnershipService *service.PartnershipService) *PartnershipHandler {
	return &PartnershipHandler{partnershipService: partnershipService}
}

func (h *PartnershipHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	partnership, err := h.partnershipService.ActivePartnership(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePartnership) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("failed to load partnership", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load partnership")
		return
	}

	writeJSON(w, http.StatusOK, partnership)
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (h *PartnershipHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	var req inviteRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inviterName := ""
	if profile != nil {
		inviterName = profile.Name
	}

	invite, err := h.partnershipService.Invite(user.ID, inviterName, req.Email)
	if err != nil {
		switch {
		case invite != nil:
			// Invite exists but the email bounced; the code still works.
			slog.Warn("invite email failed", "error", err, "invite_id", invite.ID)
			writeJSON(w, http.StatusCreated, invite)
		case errors.Is(err, service.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadyPartnered):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to create invite", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create invite")
		}
		return
	}

	writeJSON(w, http.StatusCreated, invite)
}

type acceptInviteRequest struct {
	Code string `json:"code"`
}

func (h *PartnershipHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req acceptInviteRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	partnership, err := h.partnershipService.AcceptInvite(user.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInviteExpired),
			errors.Is(err, service.ErrInviteNotPending),
			errors.Is(err, service.ErrCannotAcceptOwnInvite),
			errors.Is(err, service.ErrAlreadyPartnered):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to accept invite", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to accept invite")
		}
		return
	}

	writeJSON(w, http.StatusCreated, partnership)
}

func (h *PartnershipHandler) End(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.partnershipService.End(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePartnership) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("failed to end partnership", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to end partnership")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}
