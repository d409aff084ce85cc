// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// DefaultSessionTTL bounds a session's lifetime, measured from creation.
const DefaultSessionTTL = 24 * time.Hour

// MaxNicknameLength is counted in runes.
const MaxNicknameLength = 30

// Domain types

type Participant struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Vote     *Card  `json:"vote"`
	JoinedAt int64  `json:"joinedAt"`
}

type VoteRecord struct {
	ParticipantID string `json:"participantId"`
	Nickname      string `json:"nickname"`
	Vote          Card   `json:"vote"`
}

type RoundHistory struct {
	RoundNumber int          `json:"roundNumber"`
	RevealedAt  int64        `json:"revealedAt"`
	Votes       []VoteRecord `json:"votes"`
}

type Session struct {
	ID           string                  `json:"id"`
	CreatedAt    int64                   `json:"createdAt"`
	Participants map[string]*Participant `json:"participants"`
	Revealed     bool                    `json:"revealed"`
	CreatorID    string                  `json:"creatorId"`
	VoteHistory  []RoundHistory          `json:"voteHistory,omitempty"`

	// Version is bumped by the store on every successful write.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers can mutate without aliasing a stored record.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Participants = make(map[string]*Participant, len(s.Participants))
	for id, p := range s.Participants {
		cp := *p
		if p.Vote != nil {
			v := *p.Vote
			cp.Vote = &v
		}
		out.Participants[id] = &cp
	}
	if s.VoteHistory != nil {
		out.VoteHistory = make([]RoundHistory, len(s.VoteHistory))
		for i, round := range s.VoteHistory {
			round.Votes = append([]VoteRecord(nil), round.Votes...)
			out.VoteHistory[i] = round
		}
	}
	return &out
}

// ExpiresAt is the end of the session's bounded lifetime.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return time.UnixMilli(s.CreatedAt).Add(ttl)
}

// View types

type ParticipantView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	HasVoted bool   `json:"hasVoted"`
	Vote     *Card  `json:"vote,omitempty"`
	JoinedAt int64  `json:"joinedAt"`
	Online   bool   `json:"online"`
}

// VoteStats summarizes the numeric votes of a round. Mean is rounded to one decimal.
type VoteStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type RoundView struct {
	RoundHistory
	Stats *VoteStats `json:"stats"`
}

type SessionView struct {
	ID           string            `json:"id"`
	CreatedAt    int64             `json:"createdAt"`
	CreatorID    string            `json:"creatorId"`
	Revealed     bool              `json:"revealed"`
	Participants []ParticipantView `json:"participants"`
	CurrentVote  *Card             `json:"currentVote"`
	Stats        *VoteStats        `json:"stats,omitempty"`
	History      []RoundView       `json:"history"`
	Version      int64             `json:"version"`
}

// Request types

type CreateSessionRequest struct {
	Nickname string `json:"nickname"`
}

type JoinRequest struct {
	Nickname string `json:"nickname"`
}

type VoteRequest struct {
	ParticipantID string  `json:"participantId"`
	Vote          *string `json:"vote"`
}

type ActorRequest struct {
	ParticipantID string `json:"participantId"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	CreatorID string `json:"creatorId"`
	Nickname  string `json:"nickname"`
}

type JoinResponse struct {
	ParticipantID string `json:"participantId"`
	Nickname      string `json:"nickname"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Stream frames

const (
	FrameSession  = "session"
	FramePresence = "presence"
	FrameLeave    = "leave"
)

// Frame is one websocket message. Payload is a SessionView for "session"
// frames and a PresencePayload for "presence" frames.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PresencePayload struct {
	Online []string `json:"online"`
}
