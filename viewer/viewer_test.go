// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
)

type fakeFetcher struct {
	mu    sync.Mutex
	view  models.SessionView
	err   error
	calls atomic.Int32
}

func (f *fakeFetcher) Session(_ context.Context, sessionID, _ string) (models.SessionView, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.SessionView{}, f.err
	}
	v := f.view
	v.ID = sessionID
	return v, nil
}

func (f *fakeFetcher) set(v models.SessionView, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view, f.err = v, err
}

func card(c models.Card) *models.Card { return &c }

func TestApplyIgnoresOlderVersions(t *testing.T) {
	v := New(&fakeFetcher{}, "s1", "p1")

	if !v.Apply(models.SessionView{Version: 3}) {
		t.Fatal("Expected first snapshot kept")
	}
	if v.Apply(models.SessionView{Version: 2, Revealed: true}) {
		t.Error("Expected older snapshot ignored")
	}
	if !v.Apply(models.SessionView{Version: 3, Revealed: true}) {
		t.Error("Expected same-version snapshot kept")
	}
	if !v.Apply(models.SessionView{Version: 4}) {
		t.Error("Expected newer snapshot kept")
	}

	cur, ok := v.Current()
	if !ok || cur.Version != 4 || cur.Revealed {
		t.Errorf("Expected version 4 unrevealed, got %+v", cur)
	}
}

func TestCurrentBeforeAnySnapshot(t *testing.T) {
	v := New(&fakeFetcher{}, "s1", "")
	if _, ok := v.Current(); ok {
		t.Error("Expected no view yet")
	}
	if v.DisplayVote() != nil {
		t.Error("Expected no vote yet")
	}
}

func TestPendingVote(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	testCases := []struct {
		name    string
		elapsed time.Duration
		echo    *models.Card
		want    *models.Card
	}{
		{"pending shown while unconfirmed", time.Second, nil, card(models.CardEight)},
		{"stale server vote does not clear", time.Second, card(models.CardThree), card(models.CardEight)},
		{"echo clears pending", time.Second, card(models.CardEight), card(models.CardEight)},
		{"timeout falls back to server", 6 * time.Second, card(models.CardThree), card(models.CardThree)},
		{"timeout with no server vote", 6 * time.Second, nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			now = time.Unix(1_700_000_000, 0)
			v := New(&fakeFetcher{}, "s1", "p1", WithClock(clock))

			v.SetPending(models.CardEight)
			v.Apply(models.SessionView{Version: 1, CurrentVote: tc.echo})
			now = now.Add(tc.elapsed)

			got := v.DisplayVote()
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("Expected no vote, got %s", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Errorf("Expected %s, got %v", *tc.want, got)
			}
		})
	}
}

func TestEchoClearsPendingBeforeTimeout(t *testing.T) {
	v := New(&fakeFetcher{}, "s1", "p1")

	v.SetPending(models.CardFive)
	v.Apply(models.SessionView{Version: 1, CurrentVote: card(models.CardFive)})
	// the server moves on; the confirmed pending card must not mask it
	v.Apply(models.SessionView{Version: 2, CurrentVote: nil})

	if got := v.DisplayVote(); got != nil {
		t.Errorf("Expected the cleared server vote, got %s", *got)
	}
}

func TestRefresh(t *testing.T) {
	f := &fakeFetcher{}
	f.set(models.SessionView{Version: 7}, nil)
	v := New(f, "s1", "p1")

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	cur, _ := v.Current()
	if cur.ID != "s1" || cur.Version != 7 {
		t.Errorf("Unexpected view %+v", cur)
	}

	errDown := errors.New("down")
	f.set(models.SessionView{}, errDown)
	if err := v.Refresh(context.Background()); !errors.Is(err, errDown) {
		t.Errorf("Expected fetch error, got %v", err)
	}
	if cur, _ := v.Current(); cur.Version != 7 {
		t.Error("Expected failed refresh to keep the held view")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunPollsAndAppliesPush(t *testing.T) {
	f := &fakeFetcher{}
	f.set(models.SessionView{Version: 1}, nil)

	var accepted atomic.Int32
	v := New(f, "s1", "p1",
		WithPollInterval(10*time.Millisecond),
		WithOnChange(func(models.SessionView) { accepted.Add(1) }),
	)
	version := func() int64 {
		cur, _ := v.Current()
		return cur.Version
	}

	ctx, cancel := context.WithCancel(context.Background())
	push := make(chan models.SessionView)
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx, push) }()

	waitFor(t, "initial fetch", func() bool { return accepted.Load() > 0 })

	push <- models.SessionView{ID: "s1", Version: 5, Revealed: true}
	waitFor(t, "pushed snapshot", func() bool { return version() == 5 })

	// polls keep returning version 1, which is older and ignored
	calls := f.calls.Load()
	waitFor(t, "more polls", func() bool { return f.calls.Load() >= calls+3 })
	if got := version(); got != 5 {
		t.Errorf("Expected pushed version kept, got %d", got)
	}

	close(push)
	f.set(models.SessionView{Version: 6}, nil)
	waitFor(t, "poll after push closed", func() bool { return version() == 6 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunSurvivesFetchErrors(t *testing.T) {
	f := &fakeFetcher{}
	f.set(models.SessionView{}, errors.New("down"))
	v := New(f, "s1", "", WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx, nil) }()

	waitFor(t, "failing polls", func() bool { return f.calls.Load() >= 3 })
	f.set(models.SessionView{Version: 2}, nil)
	waitFor(t, "recovery", func() bool {
		_, ok := v.Current()
		return ok
	})

	cancel()
	<-done
}
