// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Estimate API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, hub, cfg)

# Endpoints

Health:

	GET /health

Sessions:

	POST   /sessions       - Create session (creator joined)
	GET    /sessions/{id}  - Masked view (?participantId= for own vote)
	DELETE /sessions/{id}  - Delete session

Rounds:

	POST /sessions/{id}/join   - Join with optional nickname
	POST /sessions/{id}/vote   - Set or clear (null) a vote
	POST /sessions/{id}/reveal - Reveal and archive the round
	POST /sessions/{id}/reset  - Start the next round

Live updates:

	GET /sessions/{id}/ws - Websocket stream of views and presence

# Bot Rejection

With cfg.RejectBots, every POST and DELETE route runs behind
middleware.RejectBots. Reads and the stream stay open.

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(svc, hub)
	streamHandler := handlers.NewStreamHandler(svc, hub)
*/
package router
