// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Estimate API.

# Handler Types

Each handler wraps a *poker.Service:

  - SessionHandler: session lifecycle and round actions (REST)
  - StreamHandler: live session and presence frames over a websocket

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(svc, hub)
	streamHandler := handlers.NewStreamHandler(svc, hub)

# Session Lifecycle

	POST   /sessions              → CreateSession (creator is joined)
	GET    /sessions/{id}         → GetSession (?participantId= selects the viewer)
	DELETE /sessions/{id}         → DeleteSession
	POST   /sessions/{id}/join    → Join
	POST   /sessions/{id}/vote    → Vote (vote: null clears)
	POST   /sessions/{id}/reveal  → Reveal
	POST   /sessions/{id}/reset   → Reset

Reveal and reset take an optional {"participantId"} naming the caller. When
creator enforcement is on, only the creator may call them.

# Live Updates

	GET /sessions/{id}/ws?participantId= → Stream

The first frame is the current session. Every persisted change and every
presence change follows as its own frame. Votes stay masked per viewer.

# Error Mapping

	session missing or unreadable → 404 "Session not found"
	unknown participant          → 404 "Participant not found"
	card outside the deck         → 400 "Invalid vote"
	nickname too long             → 400
	not the creator               → 403
	storage failure               → 500
*/
package handlers
