// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
)

// UserAgent identifies the client. Mutating routes reject empty or crawler-like agents.
const UserAgent = "pokerctl/1.0"

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Card returns a pointer for Vote. Pass nil to Vote to clear.
func Card(c string) *string {
	return &c
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) CreateSession(ctx context.Context, nickname string) (models.CreateSessionResponse, error) {
	var resp models.CreateSessionResponse
	err := c.do(ctx, http.MethodPost, "/sessions", models.CreateSessionRequest{Nickname: nickname}, &resp)
	return resp, err
}

// Session fetches the view of sessionID as seen by viewerID ("" for a spectator).
func (c *Client) Session(ctx context.Context, sessionID, viewerID string) (models.SessionView, error) {
	path := "/sessions/" + url.PathEscape(sessionID)
	if viewerID != "" {
		path += "?participantId=" + url.QueryEscape(viewerID)
	}

	var view models.SessionView
	err := c.do(ctx, http.MethodGet, path, nil, &view)
	return view, err
}

func (c *Client) Join(ctx context.Context, sessionID, nickname string) (models.JoinResponse, error) {
	var resp models.JoinResponse
	err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "join"), models.JoinRequest{Nickname: nickname}, &resp)
	return resp, err
}

// Vote sets participantID's card, or clears it when card is nil.
func (c *Client) Vote(ctx context.Context, sessionID, participantID string, card *string) error {
	req := models.VoteRequest{ParticipantID: participantID, Vote: card}
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "vote"), req, nil)
}

func (c *Client) Reveal(ctx context.Context, sessionID, actorID string) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "reveal"), models.ActorRequest{ParticipantID: actorID}, nil)
}

func (c *Client) Reset(ctx context.Context, sessionID, actorID string) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "reset"), models.ActorRequest{ParticipantID: actorID}, nil)
}

func (c *Client) Delete(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, nil)
}

func sessionPath(sessionID, action string) string {
	return "/sessions/" + url.PathEscape(sessionID) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
