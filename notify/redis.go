// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-estimate/models"
)

const channelPrefix = "poker:session:"

// Channel is the Redis pub/sub channel for one session.
func Channel(sessionID string) string {
	return channelPrefix + sessionID
}

// RedisBroker relays session changes between processes through Redis.
type RedisBroker struct {
	client redis.UniversalClient
	hub    *Hub
}

// NewRedisBroker publishes through client and delivers received changes to hub.
func NewRedisBroker(client redis.UniversalClient, hub *Hub) *RedisBroker {
	return &RedisBroker{client: client, hub: hub}
}

// Publish sends s to every process, this one included (via Run).
func (b *RedisBroker) Publish(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
	}
	if err := b.client.Publish(ctx, Channel(s.ID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish session %s: %w", s.ID, err)
	}
	return nil
}

// Run relays messages to the hub until ctx is done. ready, if non-nil, is
// closed once the subscription is active.
func (b *RedisBroker) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to session updates: %w", err)
	}
	if ready != nil {
		close(ready)
	}
	slog.Info("relaying session updates from redis")

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var s models.Session
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				slog.Warn("dropping malformed session update", "channel", msg.Channel, "error", err)
				continue
			}
			if s.ID == "" {
				s.ID = strings.TrimPrefix(msg.Channel, channelPrefix)
			}
			b.hub.Deliver(&s)
		}
	}
}
