// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/store"
)

const keyPrefix = "session:"

// Key returns the Redis key holding a session.
func Key(id string) string {
	return keyPrefix + id
}

// Store is a store.Store backed by Redis.
type Store struct {
	client redis.UniversalClient
}

// New wraps an existing client. The caller keeps ownership of it.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Open connects to a redis:// URL and checks the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	client, err := Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	return New(client), nil
}

// Connect parses url, dials and pings.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) Put(ctx context.Context, sess *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		// already past its lifetime; SET with no expiry would keep it forever
		return store.ErrNotFound
	}

	key := Key(sess.ID)
	next := sess.Version + 1

	copied := *sess
	copied.Version = next
	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		switch {
		case sess.Version == 0 && current != 0:
			return store.ErrConflict
		case sess.Version != 0 && current == 0:
			return store.ErrNotFound
		case current != sess.Version:
			return store.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		sess.Version = next
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return store.ErrConflict
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		return err
	default:
		return fmt.Errorf("failed to put session %s: %w", sess.ID, err)
	}
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// storedVersion reads the version of the record under key, 0 when absent.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, fmt.Errorf("failed to decode stored version: %w", err)
	}
	return head.Version, nil
}
