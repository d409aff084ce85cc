// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/poker"
	"github.com/danielhkuo/quickly-estimate/router"
	"github.com/danielhkuo/quickly-estimate/testutil"
)

func startServer(t *testing.T) (*httptest.Server, *poker.Service) {
	t.Helper()

	svc, hub := testutil.SetupTestService(t)
	srv := httptest.NewServer(router.NewRouter(svc, hub, testutil.GetTestConfig()))
	t.Cleanup(srv.Close)
	return srv, svc
}

func runCmd(t *testing.T, ctx context.Context, srv *httptest.Server, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(ctx, append([]string{"-server", srv.URL}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, name+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	t.Fatalf("Field %q not in output:\n%s", name, out)
	return ""
}

func TestCommands(t *testing.T) {
	srv, svc := startServer(t)
	ctx := context.Background()

	out, errOut, code := runCmd(t, ctx, srv, "create", "-name", "Alice")
	if code != 0 {
		t.Fatalf("create exited %d: %s", code, errOut)
	}
	sessionID := field(t, out, "session")
	aliceID := field(t, out, "participant")

	out, errOut, code = runCmd(t, ctx, srv, "join", "-session", sessionID, "-name", "Bob")
	if code != 0 {
		t.Fatalf("join exited %d: %s", code, errOut)
	}
	bobID := field(t, out, "participant")

	if _, errOut, code = runCmd(t, ctx, srv, "vote", "-session", sessionID, "-as", aliceID, "5"); code != 0 {
		t.Fatalf("vote exited %d: %s", code, errOut)
	}
	if _, errOut, code = runCmd(t, ctx, srv, "vote", "-session", sessionID, "-as", bobID, "8"); code != 0 {
		t.Fatalf("vote exited %d: %s", code, errOut)
	}

	out, _, code = runCmd(t, ctx, srv, "show", "-session", sessionID, "-as", aliceID)
	if code != 0 {
		t.Fatalf("show exited %d", code)
	}
	if !strings.Contains(out, "votes hidden") || !strings.Contains(out, "5    Alice (creator, you)") {
		t.Errorf("Unexpected hidden view:\n%s", out)
	}
	if !strings.Contains(out, "✓    Bob") {
		t.Errorf("Expected Bob's vote masked:\n%s", out)
	}

	if _, errOut, code = runCmd(t, ctx, srv, "reveal", "-session", sessionID, "-as", aliceID); code != 0 {
		t.Fatalf("reveal exited %d: %s", code, errOut)
	}
	out, _, _ = runCmd(t, ctx, srv, "show", "-session", sessionID)
	for _, want := range []string{"votes revealed", "8    Bob", "mean 6.5, min 5, max 8 (2 votes)", "#1 "} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in revealed view:\n%s", want, out)
		}
	}

	if _, errOut, code = runCmd(t, ctx, srv, "reset", "-session", sessionID); code != 0 {
		t.Fatalf("reset exited %d: %s", code, errOut)
	}
	if _, errOut, code = runCmd(t, ctx, srv, "vote", "-session", sessionID, "-as", bobID, "-clear"); code != 0 {
		t.Fatalf("vote -clear exited %d: %s", code, errOut)
	}

	sess, err := svc.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.Revealed || len(sess.VoteHistory) != 1 {
		t.Errorf("Expected new round with 1 archived, got revealed=%v rounds=%d", sess.Revealed, len(sess.VoteHistory))
	}

	if _, errOut, code = runCmd(t, ctx, srv, "delete", "-session", sessionID); code != 0 {
		t.Fatalf("delete exited %d: %s", code, errOut)
	}
	_, errOut, code = runCmd(t, ctx, srv, "show", "-session", sessionID)
	if code != 1 || !strings.Contains(errOut, "Session not found") {
		t.Errorf("Expected not found after delete, got %d: %s", code, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	srv, _ := startServer(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no command", nil, 2, "usage"},
		{"unknown command", []string{"dance"}, 2, "unknown command"},
		{"missing session", []string{"show"}, 1, "-session is required"},
		{"vote without participant", []string{"vote", "-session", "x", "5"}, 1, "-as is required"},
		{"vote without card", []string{"vote", "-session", "x", "-as", "p"}, 1, "expected one card"},
		{"invalid card", []string{"vote", "-session", "x", "-as", "p", "4"}, 1, "Invalid vote"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errOut, code := runCmd(t, ctx, srv, tc.args...)
			if code != tc.wantCode {
				t.Errorf("Expected exit %d, got %d", tc.wantCode, code)
			}
			if !strings.Contains(errOut, tc.wantErr) {
				t.Errorf("Expected %q in stderr, got %q", tc.wantErr, errOut)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	srv, svc := startServer(t)
	created := testutil.CreateTestSession(t, svc, "Alice")

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"-server", srv.URL, "watch", "-session", created.SessionID, "-as", created.CreatorID}, &stdout, &stderr)
	}()

	waitForOutput(t, &stdout, "Alice (creator, you, online)")

	testutil.CastTestVote(t, svc, created.SessionID, created.CreatorID, "13")
	waitForOutput(t, &stdout, "13   Alice")

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("watch exited %d: %s", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRenderCoffee(t *testing.T) {
	var buf bytes.Buffer
	coffee := models.CardCoffee
	render(&buf, models.SessionView{
		ID:       "s1",
		Revealed: true,
		Participants: []models.ParticipantView{
			{ID: "p1", Nickname: "Alice", HasVoted: true, Vote: &coffee},
			{ID: "p2", Nickname: "Bob"},
		},
		Stats: nil,
	}, "", nil)

	out := buf.String()
	if !strings.Contains(out, "☕") || !strings.Contains(out, "-    Bob") {
		t.Errorf("Unexpected render:\n%s", out)
	}
	if strings.Contains(out, "mean") {
		t.Errorf("Expected no stats line without numeric votes:\n%s", out)
	}
}

func TestFormatStats(t *testing.T) {
	testCases := []struct {
		name  string
		stats models.VoteStats
		want  string
	}{
		{"single vote", models.VoteStats{Count: 1, Mean: 13, Min: 13, Max: 13}, "mean 13, min 13, max 13 (1 vote)"},
		{"several votes", models.VoteStats{Count: 3, Mean: 1.7, Min: 1, Max: 2}, "mean 1.7, min 1, max 2 (3 votes)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatStats(&tc.stats); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}
