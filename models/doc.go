// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

The stored record and its parts:

  - Session: one estimation room (participants, revealed flag, history)
  - Participant: a joined user and their current vote
  - Card: one estimate symbol from the fixed deck
  - VoteRecord: a participant's vote captured at reveal time
  - RoundHistory: one archived round

Session is persisted as a single JSON object:

	{"id", "createdAt", "participants", "revealed", "creatorId", "voteHistory", "version"}

Timestamps are epoch milliseconds.

# Views

Reads never return a raw Session. SessionView masks votes until the round is
revealed, keeping only the per-participant hasVoted flag:

  - SessionView: ordered participants, stats, history with stats
  - ParticipantView: id, nickname, hasVoted, vote (when visible), online
  - VoteStats: mean, min, max, count of numeric votes

# Request Types

  - CreateSessionRequest: nickname (optional)
  - JoinRequest: nickname (optional)
  - VoteRequest: participantId, vote (null clears)
  - ActorRequest: participantId (reveal/reset caller)

# Response Types

  - CreateSessionResponse: sessionId, creatorId, nickname
  - JoinResponse: participantId, nickname
  - SuccessResponse: success
  - ErrorResponse: error, message

# Stream Frames

Websocket messages are Frame{type, payload}:

  - "session": payload is the viewer's SessionView
  - "presence": payload is PresencePayload{online}
  - "leave": sent by the client, no payload

# Deck

	Deck = 0 1 2 3 5 8 13 21 ? ☕

"coffee-cup" is accepted as an input alias of ☕.
*/
package models
