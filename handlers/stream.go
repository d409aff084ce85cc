// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/quickly-estimate/middleware"
	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/poker"
)

// Notifier is the push side of the hub. *notify.Hub implements it.
type Notifier interface {
	Presence
	Subscribe(sessionID string) (<-chan *models.Session, func())
	SubscribePresence(sessionID string) (<-chan []string, func())
	Announce(sessionID, participantID string) (leave func())
}

type StreamHandler struct {
	svc *poker.Service
	hub Notifier
}

func NewStreamHandler(svc *poker.Service, hub Notifier) *StreamHandler {
	return &StreamHandler{svc: svc, hub: hub}
}

// Stream handles GET /sessions/{id}/ws?participantId=
//
// The connection first receives the current session, then one "session"
// frame per persisted change and one "presence" frame per join or leave.
// A participant counts as online while connected, until it sends "leave".
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	participantID := r.URL.Query().Get("participantId")

	sess, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load session")
		return
	}
	if _, ok := sess.Participants[participantID]; !ok {
		// spectators may watch but are never shown as online
		participantID = ""
	}

	logger := middleware.Logger(r).With("session_id", sessionID, "participant_id", participantID)

	server := websocket.Server{Handler: func(conn *websocket.Conn) {
		defer conn.Close()

		updates, unsubscribe := h.hub.Subscribe(sessionID)
		defer unsubscribe()
		presence, unsubscribePresence := h.hub.SubscribePresence(sessionID)
		defer unsubscribePresence()

		leave := func() {}
		if participantID != "" {
			leave = h.hub.Announce(sessionID, participantID)
		}
		defer leave()

		logger.Info("stream opened")
		defer logger.Info("stream closed")

		// reload after subscribing so no change falls between snapshot and feed
		current, err := h.svc.Get(conn.Request().Context(), sessionID)
		if err != nil {
			logger.Warn("session gone before stream start", "error", err)
			return
		}
		if err := h.sendSession(conn, current, participantID); err != nil {
			return
		}

		left := make(chan struct{})
		go func() {
			defer close(left)
			for {
				var frame models.Frame
				if err := websocket.JSON.Receive(conn, &frame); err != nil {
					return
				}
				if frame.Type == models.FrameLeave {
					leave()
					return
				}
			}
		}()

		for {
			select {
			case <-left:
				return
			case <-conn.Request().Context().Done():
				return
			case s, ok := <-updates:
				if !ok {
					return
				}
				if err := h.sendSession(conn, s, participantID); err != nil {
					logger.Debug("stream write failed", "error", err)
					return
				}
			case online, ok := <-presence:
				if !ok {
					return
				}
				if err := send(conn, models.FramePresence, models.PresencePayload{Online: online}); err != nil {
					logger.Debug("stream write failed", "error", err)
					return
				}
			}
		}
	}}

	server.ServeHTTP(w, r)
}

func (h *StreamHandler) sendSession(conn *websocket.Conn, s *models.Session, viewerID string) error {
	view := poker.Project(s, viewerID, h.hub.Online(s.ID))
	return send(conn, models.FrameSession, view)
}

func send(conn *websocket.Conn, frameType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return websocket.JSON.Send(conn, models.Frame{Type: frameType, Payload: data})
}
