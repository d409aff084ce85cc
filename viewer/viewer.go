// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
)

const (
	PollInterval   = 2 * time.Second
	PendingTimeout = 5 * time.Second
)

// Fetcher loads a session view. *client.Client implements it.
type Fetcher interface {
	Session(ctx context.Context, sessionID, viewerID string) (models.SessionView, error)
}

type Viewer struct {
	fetcher       Fetcher
	sessionID     string
	participantID string

	pollInterval   time.Duration
	pendingTimeout time.Duration
	now            func() time.Time
	onChange       func(models.SessionView)

	mu        sync.Mutex
	view      *models.SessionView
	pending   *models.Card
	pendingAt time.Time
}

type Option func(*Viewer)

func WithPollInterval(d time.Duration) Option {
	return func(v *Viewer) { v.pollInterval = d }
}

func WithPendingTimeout(d time.Duration) Option {
	return func(v *Viewer) { v.pendingTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(v *Viewer) { v.now = now }
}

// WithOnChange calls fn with every accepted snapshot.
func WithOnChange(fn func(models.SessionView)) Option {
	return func(v *Viewer) { v.onChange = fn }
}

// New watches sessionID as participantID ("" for a spectator).
func New(f Fetcher, sessionID, participantID string, opts ...Option) *Viewer {
	v := &Viewer{
		fetcher:        f,
		sessionID:      sessionID,
		participantID:  participantID,
		pollInterval:   PollInterval,
		pendingTimeout: PendingTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Apply replaces the held view with s unless s is older. It reports whether s was kept.
func (v *Viewer) Apply(s models.SessionView) bool {
	v.mu.Lock()
	if v.view != nil && s.Version < v.view.Version {
		v.mu.Unlock()
		return false
	}
	v.view = &s
	if v.pending != nil && s.CurrentVote != nil && *s.CurrentVote == *v.pending {
		v.pending = nil
	}
	onChange := v.onChange
	v.mu.Unlock()

	if onChange != nil {
		onChange(s)
	}
	return true
}

// Current returns the held view, if any.
func (v *Viewer) Current() (models.SessionView, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.view == nil {
		return models.SessionView{}, false
	}
	return *v.view, true
}

// SetPending marks card as submitted but not yet confirmed.
func (v *Viewer) SetPending(card models.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending = &card
	v.pendingAt = v.now()
}

// DisplayVote is the card to highlight: the pending one while it is
// unconfirmed and fresh, else the server's currentVote.
func (v *Viewer) DisplayVote() *models.Card {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pending != nil {
		if v.now().Sub(v.pendingAt) < v.pendingTimeout {
			card := *v.pending
			return &card
		}
		v.pending = nil
	}
	if v.view == nil || v.view.CurrentVote == nil {
		return nil
	}
	card := *v.view.CurrentVote
	return &card
}

// Refresh fetches and applies the current snapshot.
func (v *Viewer) Refresh(ctx context.Context) error {
	s, err := v.fetcher.Session(ctx, v.sessionID, v.participantID)
	if err != nil {
		return err
	}
	v.Apply(s)
	return nil
}

// Run refreshes once, then polls every poll interval and applies snapshots
// from push until ctx is done. push may be nil. Poll failures are logged and
// retried on the next tick.
func (v *Viewer) Run(ctx context.Context, push <-chan models.SessionView) error {
	if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("initial session fetch failed", "session_id", v.sessionID, "error", err)
	}

	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("session poll failed", "session_id", v.sessionID, "error", err)
			}
		case s, ok := <-push:
			if !ok {
				// stream ended, keep polling
				push = nil
				continue
			}
			v.Apply(s)
		}
	}
}
