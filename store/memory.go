// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-estimate/models"
)

type memoryEntry struct {
	data      []byte
	version   int64
	expiresAt time.Time
}

// Memory is a process-local Store. Records are kept serialized so readers
// never share state with writers.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Used by tests to simulate expiry.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	now := m.now()
	m.mu.RUnlock()

	if !ok || !now.Before(entry.expiresAt) {
		return nil, ErrNotFound
	}

	var s models.Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	s.Version = entry.version
	return &s, nil
}

func (m *Memory) Put(_ context.Context, s *models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current, ok := m.entries[s.ID]
	live := ok && now.Before(current.expiresAt)

	switch {
	case s.Version == 0 && live:
		return ErrConflict
	case s.Version != 0 && !live:
		return ErrNotFound
	case s.Version != 0 && current.version != s.Version:
		return ErrConflict
	}

	next := s.Version + 1
	copied := *s
	copied.Version = next
	data, err := json.Marshal(&copied)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	m.entries[s.ID] = memoryEntry{
		data:      data,
		version:   next,
		expiresAt: now.Add(ttl),
	}
	s.Version = next
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len counts live records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
