// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
)

var (
	// ErrNotFound means the id is unknown or its record has expired.
	ErrNotFound = errors.New("session not found")
	// ErrConflict means the stored version differs from the one the caller read.
	ErrConflict = errors.New("session version conflict")
)

// Store persists whole Session records with expiry.
//
// Put is a compare-and-swap on Session.Version: it succeeds only when the
// stored version equals s.Version (0 meaning "absent or expired"), writes the
// record with Version+1, resets its expiry to ttl from now, and updates
// s.Version to the new value.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Put(ctx context.Context, s *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
