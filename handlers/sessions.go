// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/danielhkuo/quickly-estimate/middleware"
	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/poker"
)

// Presence reports which participants are connected. *notify.Hub implements it.
type Presence interface {
	Online(sessionID string) map[string]bool
}

type SessionHandler struct {
	svc      *poker.Service
	presence Presence
}

// NewSessionHandler builds the REST handlers. presence may be nil.
func NewSessionHandler(svc *poker.Service, presence Presence) *SessionHandler {
	return &SessionHandler{svc: svc, presence: presence}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.CreateSession(r.Context(), req.Nickname)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// GetSession handles GET /sessions/{id}?participantId=
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	viewerID := r.URL.Query().Get("participantId")

	var online map[string]bool
	if h.presence != nil {
		online = h.presence.Online(sessionID)
	}

	view, err := h.svc.View(r.Context(), sessionID, viewerID, online)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Session ID required")
		return
	}

	if err := h.svc.Delete(r.Context(), sessionID); err != nil {
		writeServiceError(w, r, err, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Join handles POST /sessions/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.Join(r.Context(), r.PathValue("id"), req.Nickname)
	if err != nil {
		writeServiceError(w, r, err, "Failed to join session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Vote handles POST /sessions/{id}/vote
func (h *SessionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ParticipantID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Participant ID required")
		return
	}

	if err := h.svc.Vote(r.Context(), r.PathValue("id"), req.ParticipantID, req.Vote); err != nil {
		writeServiceError(w, r, err, "Failed to submit vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Reveal handles POST /sessions/{id}/reveal
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req models.ActorRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.Reveal(r.Context(), r.PathValue("id"), req.ParticipantID); err != nil {
		writeServiceError(w, r, err, "Failed to reveal votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Reset handles POST /sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.ActorRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.Reset(r.Context(), r.PathValue("id"), req.ParticipantID); err != nil {
		writeServiceError(w, r, err, "Failed to reset round")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// parseOptionalBody accepts an empty body as the zero value.
func parseOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := middleware.ParseJSONBody(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeServiceError maps poker errors to status codes. A failed read matches
// ErrSessionNotFound and is answered 404.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, poker.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, poker.ErrParticipantNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant not found")
	case errors.Is(err, poker.ErrInvalidCard):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid vote")
	case errors.Is(err, poker.ErrInvalidNickname):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Nickname must be at most 30 characters")
	case errors.Is(err, poker.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the session creator can perform this action")
	default:
		middleware.Logger(r).Error(fallback, "session_id", r.PathValue("id"), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
