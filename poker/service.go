// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-estimate/auth"
	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/store"
)

// maxAttempts bounds read-modify-write retries on version conflicts.
const maxAttempts = 8

// Publisher receives every successfully persisted session.
type Publisher interface {
	Publish(ctx context.Context, s *models.Session) error
}

// Service runs the session state machine on top of a Store.
// It holds no per-session state; the Store is the only shared resource.
type Service struct {
	store          store.Store
	publisher      Publisher
	ttl            time.Duration
	enforceCreator bool
	now            func() time.Time
	newID          func() string
	newNickname    func() string
}

type Option func(*Service)

// WithPublisher pushes every persisted change to p. Publish errors are logged, not returned.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTTL sets the session lifetime, measured from creation.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithCreatorEnforcement rejects reveal/reset from anyone but the creator.
func WithCreatorEnforcement(enabled bool) Option {
	return func(s *Service) { s.enforceCreator = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:       st,
		ttl:         models.DefaultSessionTTL,
		now:         time.Now,
		newID:       auth.NewID,
		newNickname: auth.RandomNickname,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a session whose creator is already joined.
func (s *Service) CreateSession(ctx context.Context, nickname string) (models.CreateSessionResponse, error) {
	nickname, err := s.normalizeNickname(nickname)
	if err != nil {
		return models.CreateSessionResponse{}, err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		now := s.now().UnixMilli()
		sess := &models.Session{
			ID:        s.newID(),
			CreatedAt: now,
			CreatorID: s.newID(),
			Revealed:  false,
		}
		sess.Participants = map[string]*models.Participant{
			sess.CreatorID: {
				ID:       sess.CreatorID,
				Nickname: nickname,
				JoinedAt: now,
			},
		}

		err := s.store.Put(ctx, sess, s.ttl)
		if errors.Is(err, store.ErrConflict) {
			// id collision with a live session
			continue
		}
		if err != nil {
			slog.Error("failed to store new session", "error", err)
			return models.CreateSessionResponse{}, &StorageError{Op: "create session", Err: err}
		}

		slog.Info("session created", "session_id", sess.ID, "creator_id", sess.CreatorID)
		s.publish(ctx, sess)
		return models.CreateSessionResponse{
			SessionID: sess.ID,
			CreatorID: sess.CreatorID,
			Nickname:  nickname,
		}, nil
	}

	return models.CreateSessionResponse{}, &StorageError{Op: "create session", Err: store.ErrConflict}
}

// Get loads a live session.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.load(ctx, id, "get session")
}

// View loads a session and masks it for viewerID.
func (s *Service) View(ctx context.Context, id, viewerID string, online map[string]bool) (models.SessionView, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	return Project(sess, viewerID, online), nil
}

// Join adds a new participant. Joining is never idempotent: every call mints a new id.
// Joining a revealed round is allowed.
func (s *Service) Join(ctx context.Context, id, nickname string) (models.JoinResponse, error) {
	nickname, err := s.normalizeNickname(nickname)
	if err != nil {
		return models.JoinResponse{}, err
	}

	participantID := s.newID()
	_, err = s.mutate(ctx, id, "join", func(sess *models.Session) (bool, error) {
		for {
			if _, taken := sess.Participants[participantID]; !taken {
				break
			}
			participantID = s.newID()
		}
		sess.Participants[participantID] = &models.Participant{
			ID:       participantID,
			Nickname: nickname,
			JoinedAt: s.now().UnixMilli(),
		}
		return true, nil
	})
	if err != nil {
		return models.JoinResponse{}, err
	}

	slog.Info("participant joined", "session_id", id, "participant_id", participantID)
	return models.JoinResponse{ParticipantID: participantID, Nickname: nickname}, nil
}

// Vote sets or clears (card == nil) a participant's current vote.
// Voting is not blocked while the round is revealed.
func (s *Service) Vote(ctx context.Context, id, participantID string, card *string) error {
	var vote *models.Card
	if card != nil {
		c, ok := models.ParseCard(*card)
		if !ok {
			return ErrInvalidCard
		}
		vote = &c
	}

	_, err := s.mutate(ctx, id, "vote", func(sess *models.Session) (bool, error) {
		p, ok := sess.Participants[participantID]
		if !ok {
			return false, ErrParticipantNotFound
		}
		if vote == nil {
			p.Vote = nil
		} else {
			c := *vote
			p.Vote = &c
		}
		return true, nil
	})
	return err
}

// Reveal makes current votes visible. The first reveal of a round archives
// every non-absent vote as a new RoundHistory entry; revealing an already
// revealed round changes nothing.
func (s *Service) Reveal(ctx context.Context, id, actorID string) error {
	_, err := s.mutate(ctx, id, "reveal", func(sess *models.Session) (bool, error) {
		if err := s.authorize(sess, actorID); err != nil {
			return false, err
		}
		if sess.Revealed {
			return false, nil
		}

		var votes []models.VoteRecord
		for _, p := range OrderedParticipants(sess) {
			if p.Vote == nil {
				continue
			}
			votes = append(votes, models.VoteRecord{
				ParticipantID: p.ID,
				Nickname:      p.Nickname,
				Vote:          *p.Vote,
			})
		}
		if len(votes) > 0 {
			sess.VoteHistory = append(sess.VoteHistory, models.RoundHistory{
				RoundNumber: len(sess.VoteHistory) + 1,
				RevealedAt:  s.now().UnixMilli(),
				Votes:       votes,
			})
		}
		sess.Revealed = true
		return true, nil
	})
	return err
}

// Reset clears every vote and hides results for the next round. History is kept.
func (s *Service) Reset(ctx context.Context, id, actorID string) error {
	_, err := s.mutate(ctx, id, "reset", func(sess *models.Session) (bool, error) {
		if err := s.authorize(sess, actorID); err != nil {
			return false, err
		}
		for _, p := range sess.Participants {
			p.Vote = nil
		}
		sess.Revealed = false
		return true, nil
	})
	return err
}

// Delete removes a session immediately.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		slog.Error("failed to delete session", "session_id", id, "error", err)
		return &StorageError{Op: "delete session", Err: err}
	}
	slog.Info("session deleted", "session_id", id)
	return nil
}

// mutate loads, applies and persists one transition, re-reading and
// re-applying on version conflicts. apply reports whether it changed anything;
// unchanged sessions are not written.
func (s *Service) mutate(ctx context.Context, id, op string, apply func(*models.Session) (bool, error)) (*models.Session, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		sess, err := s.load(ctx, id, op)
		if err != nil {
			return nil, err
		}

		changed, err := apply(sess)
		if err != nil {
			return nil, err
		}
		if !changed {
			return sess, nil
		}

		ttl, ok := s.remaining(sess)
		if !ok {
			return nil, ErrSessionNotFound
		}

		err = s.store.Put(ctx, sess, ttl)
		switch {
		case err == nil:
			s.publish(ctx, sess)
			return sess, nil
		case errors.Is(err, store.ErrConflict):
			slog.Debug("session write conflict, retrying", "session_id", id, "op", op, "attempt", attempt+1)
			continue
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrSessionNotFound
		default:
			slog.Error("failed to store session", "session_id", id, "op", op, "error", err)
			return nil, &StorageError{Op: op, Err: err}
		}
	}

	slog.Error("session write conflict retries exhausted", "session_id", id, "op", op)
	return nil, &StorageError{Op: op, Err: store.ErrConflict}
}

func (s *Service) load(ctx context.Context, id, op string) (*models.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		slog.Warn("failed to read session, treating as not found", "session_id", id, "op", op, "error", err)
		return nil, &StorageError{Op: op, Read: true, Err: err}
	}

	if _, ok := s.remaining(sess); !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Participants == nil {
		sess.Participants = make(map[string]*models.Participant)
	}
	return sess, nil
}

// remaining is the lifetime left before createdAt+ttl.
func (s *Service) remaining(sess *models.Session) (time.Duration, bool) {
	left := sess.ExpiresAt(s.ttl).Sub(s.now())
	return left, left > 0
}

func (s *Service) authorize(sess *models.Session, actorID string) error {
	if !s.enforceCreator {
		return nil
	}
	if actorID == "" || actorID != sess.CreatorID {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) normalizeNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return s.newNickname(), nil
	}
	if utf8.RuneCountInString(nickname) > models.MaxNicknameLength {
		return "", ErrInvalidNickname
	}
	return nickname, nil
}

func (s *Service) publish(ctx context.Context, sess *models.Session) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, sess.Clone()); err != nil {
		slog.Warn("failed to publish session update", "session_id", sess.ID, "error", err)
	}
}
