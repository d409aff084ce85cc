// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-estimate/cliparse"
	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/notify"
	"github.com/danielhkuo/quickly-estimate/poker"
	"github.com/danielhkuo/quickly-estimate/store"
)

// BrowserUserAgent passes middleware.RejectBots.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

// SetupTestService returns a service on a fresh in-memory store, publishing to hub.
func SetupTestService(t *testing.T, opts ...poker.Option) (*poker.Service, *notify.Hub) {
	t.Helper()

	hub := notify.NewHub()
	opts = append([]poker.Option{poker.WithPublisher(hub)}, opts...)
	return poker.NewService(store.NewMemory(), opts...), hub
}

// GetTestConfig returns a config suitable for tests
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.RejectBots = true
	return cfg
}

// CreateTestSession creates a session whose creator is already joined.
func CreateTestSession(t *testing.T, svc *poker.Service, nickname string) models.CreateSessionResponse {
	t.Helper()

	resp, err := svc.CreateSession(context.Background(), nickname)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return resp
}

// JoinTestParticipant adds a participant and returns its id.
func JoinTestParticipant(t *testing.T, svc *poker.Service, sessionID, nickname string) string {
	t.Helper()

	resp, err := svc.Join(context.Background(), sessionID, nickname)
	if err != nil {
		t.Fatalf("Failed to join test session: %v", err)
	}
	return resp.ParticipantID
}

// CastTestVote sets a participant's vote.
func CastTestVote(t *testing.T, svc *poker.Service, sessionID, participantID, card string) {
	t.Helper()

	if err := svc.Vote(context.Background(), sessionID, participantID, &card); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP request with a browser User-Agent and optional JSON body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks the response status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into v
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
