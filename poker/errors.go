// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not found in session")
	ErrInvalidCard         = errors.New("invalid card value")
	ErrInvalidNickname     = errors.New("nickname must be at most 30 characters")
	ErrUnauthorized        = errors.New("only the session creator can perform this action")
	ErrStorage             = errors.New("session storage failure")
)

// StorageError wraps a backend failure. A failed read also matches
// ErrSessionNotFound so callers deny the action rather than act on
// unknown state; errors.Is(err, ErrStorage) still tells the cases apart.
type StorageError struct {
	Op   string
	Read bool
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	if target == ErrStorage {
		return true
	}
	return e.Read && target == ErrSessionNotFound
}
