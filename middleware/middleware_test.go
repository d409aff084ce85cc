// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-estimate/models"
)

func TestWithLogging(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		statusCode int
		body       string
	}{
		{"read", "GET", http.StatusOK, `{"id":"abc"}`},
		{"create", "POST", http.StatusCreated, `{"sessionId":"abc"}`},
		{"delete", "DELETE", http.StatusNoContent, ""},
		{"missing session", "POST", http.StatusNotFound, `{"error":"Not Found"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest(tc.method, "/sessions/abc", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if !called {
				t.Error("Expected handler to be called")
			}
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "created session",
			statusCode: http.StatusCreated,
			data:       models.CreateSessionResponse{SessionID: "abc123", CreatorID: "key456", Nickname: "Alice"},
			expected:   `{"sessionId":"abc123","creatorId":"key456","nickname":"Alice"}`,
		},
		{
			name:       "success flag",
			statusCode: http.StatusOK,
			data:       models.SuccessResponse{Success: true},
			expected:   `{"success":true}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			// Encode appends a newline
			if body := strings.TrimSpace(w.Body.String()); body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		message       string
		expectedError string
	}{
		{http.StatusBadRequest, "Invalid vote", "Bad Request"},
		{http.StatusUnauthorized, "Unauthorized access", "Unauthorized"},
		{http.StatusForbidden, "Only the session creator can perform this action", "Forbidden"},
		{http.StatusNotFound, "Session not found", "Not Found"},
		{http.StatusInternalServerError, "Failed to submit vote", "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantErr   bool
		wantVote  *string
		wantActor string
	}{
		{"card", `{"participantId":"p1","vote":"13"}`, false, strPtr("13"), "p1"},
		{"null clears", `{"participantId":"p1","vote":null}`, false, nil, "p1"},
		{"unknown fields ignored", `{"participantId":"p1","vote":"?","extra":1}`, false, strPtr("?"), "p1"},
		{"invalid JSON", `{invalid json}`, true, nil, ""},
		{"empty body", ``, true, nil, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/sessions/abc/vote", strings.NewReader(tc.body))

			var parsed models.VoteRequest
			err := ParseJSONBody(req, &parsed)

			if tc.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if parsed.ParticipantID != tc.wantActor {
				t.Errorf("Expected participantId '%s', got '%s'", tc.wantActor, parsed.ParticipantID)
			}
			switch {
			case tc.wantVote == nil && parsed.Vote != nil:
				t.Errorf("Expected nil vote, got %q", *parsed.Vote)
			case tc.wantVote != nil && (parsed.Vote == nil || *parsed.Vote != *tc.wantVote):
				t.Errorf("Expected vote %q, got %v", *tc.wantVote, parsed.Vote)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestCORS(t *testing.T) {
	corsHandler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	}))

	t.Run("preflight stops before the handler", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/sessions/abc/vote", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "" {
			t.Errorf("Expected empty 200, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected origin echoed, got %q", got)
		}

		methods := w.Header().Get("Access-Control-Allow-Methods")
		for _, m := range []string{"GET", "POST", "DELETE", "OPTIONS"} {
			if !strings.Contains(methods, m) {
				t.Errorf("Expected %s in allowed methods %q", m, methods)
			}
		}
		if strings.Contains(methods, "PUT") {
			t.Errorf("PUT has no route, got %q", methods)
		}

		headers := w.Header().Get("Access-Control-Allow-Headers")
		if !strings.Contains(headers, "Content-Type") || !strings.Contains(headers, RequestIDHeader) {
			t.Errorf("Expected Content-Type and %s allowed, got %q", RequestIDHeader, headers)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
			t.Errorf("Expected %s exposed, got %q", RequestIDHeader, got)
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/abc", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected '*', got %q", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"X-Forwarded-For chain keeps the client", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:12345", "203.0.113.195"},
		{"X-Forwarded-For wins over X-Real-IP", map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "192.168.1.100"},
		{"X-Real-IP wins over RemoteAddr", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "203.0.113.50"},
		{"RemoteAddr port stripped", nil, "192.168.1.50:54321", "192.168.1.50"},
		{"RemoteAddr without port", nil, "192.168.1.50", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sessions/abc", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if seen == "" {
			t.Fatal("Expected a generated request id")
		}
		if got := w.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("Expected response header %q, got %q", seen, got)
		}
	})

	t.Run("caller id reused", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "trace-42")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if seen != "trace-42" {
			t.Errorf("Expected request id 'trace-42', got '%s'", seen)
		}
	})

	t.Run("oversized id replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if len(seen) > 128 {
			t.Errorf("Expected oversized id to be replaced, got %d chars", len(seen))
		}
	})
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if id := RequestIDFrom(req.Context()); id != "" {
		t.Errorf("Expected empty id, got '%s'", id)
	}
	if Logger(req) == nil {
		t.Error("Expected a logger without request id")
	}
}

func TestIsBot(t *testing.T) {
	testCases := []struct {
		userAgent string
		want      bool
	}{
		{"", true},
		{"   ", true},
		{"Googlebot/2.1 (+http://www.google.com/bot.html)", true},
		{"Mozilla/5.0 (compatible; bingbot/2.0)", true},
		{"python-requests/2.31.0", true},
		{"Mozilla/5.0 HeadlessChrome/120.0", true},
		{"Wget/1.21", true},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15", false},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36", false},
		{"pokerctl/1.0", false},
		{"Go-http-client/1.1", false},
	}

	for _, tc := range testCases {
		t.Run(tc.userAgent, func(t *testing.T) {
			if got := IsBot(tc.userAgent); got != tc.want {
				t.Errorf("IsBot(%q) = %v, want %v", tc.userAgent, got, tc.want)
			}
		})
	}
}

func TestRejectBots(t *testing.T) {
	handlerCalled := false
	handler := RejectBots(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("bot rejected", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest("POST", "/sessions/abc/vote", nil)
		req.Header.Set("User-Agent", "AhrefsBot/7.0")
		w := httptest.NewRecorder()

		handler(w, req)

		if handlerCalled {
			t.Error("Expected handler not to be called for a bot")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}
		if resp.Message != "Unauthorized access" {
			t.Errorf("Expected message 'Unauthorized access', got '%s'", resp.Message)
		}
	})

	t.Run("browser allowed", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest("POST", "/sessions/abc/vote", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
		w := httptest.NewRecorder()

		handler(w, req)

		if !handlerCalled {
			t.Error("Expected handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}
