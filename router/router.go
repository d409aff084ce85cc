// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-estimate/cliparse"
	"github.com/danielhkuo/quickly-estimate/handlers"
	"github.com/danielhkuo/quickly-estimate/middleware"
	"github.com/danielhkuo/quickly-estimate/notify"
	"github.com/danielhkuo/quickly-estimate/poker"
)

func NewRouter(svc *poker.Service, hub *notify.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(svc, hub)
	streamHandler := handlers.NewStreamHandler(svc, hub)

	// mutating routes also turn away automated clients when enabled
	guarded := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.RejectBots {
			h = middleware.RejectBots(h)
		}
		return middleware.WithLogging(h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", guarded(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/{id}", guarded(sessionHandler.DeleteSession))

	// Round operations
	mux.HandleFunc("POST /sessions/{id}/join", guarded(sessionHandler.Join))
	mux.HandleFunc("POST /sessions/{id}/vote", guarded(sessionHandler.Vote))
	mux.HandleFunc("POST /sessions/{id}/reveal", guarded(sessionHandler.Reveal))
	mux.HandleFunc("POST /sessions/{id}/reset", guarded(sessionHandler.Reset))

	// Live updates
	mux.HandleFunc("GET /sessions/{id}/ws", middleware.WithLogging(streamHandler.Stream))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-estimate API v1"))
	})

	return mux
}
