// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/quickly-estimate/models"
)

// Stream is an open websocket subscription to one session.
type Stream struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Subscribe opens the live stream of sessionID. A participantID that belongs
// to the session is shown online while the stream is open.
func (c *Client) Subscribe(ctx context.Context, sessionID, participantID string) (*Stream, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + sessionPath(sessionID, "ws")
	if participantID != "" {
		wsURL += "?participantId=" + url.QueryEscape(participantID)
	}

	cfg, err := websocket.NewConfig(wsURL, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("stream config: %w", err)
	}
	cfg.Header.Set("User-Agent", UserAgent)

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	return &Stream{conn: conn}, nil
}

// Next blocks for the next frame.
func (s *Stream) Next() (models.Frame, error) {
	var frame models.Frame
	err := websocket.JSON.Receive(s.conn, &frame)
	return frame, err
}

// Leave tells the server this participant is gone. The server then closes the stream.
func (s *Stream) Leave() error {
	return websocket.JSON.Send(s.conn, models.Frame{Type: models.FrameLeave})
}

func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.conn.Close() })
	return err
}

// Forward sends every session frame to out until the stream ends or ctx is
// done, then closes the stream. Presence frames are skipped; session frames
// already carry the online flags.
func (s *Stream) Forward(ctx context.Context, out chan<- models.SessionView) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()
	defer s.Close()

	for {
		frame, err := s.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read stream: %w", err)
		}
		if frame.Type != models.FrameSession {
			continue
		}

		var view models.SessionView
		if err := json.Unmarshal(frame.Payload, &view); err != nil {
			return fmt.Errorf("decode session frame: %w", err)
		}
		select {
		case out <- view:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
