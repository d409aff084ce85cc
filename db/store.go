// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quickly-estimate/models"
	"github.com/danielhkuo/quickly-estimate/store"
)

const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Store is a store.Store keeping one row per session in poker_session.
// Expired rows are invisible to reads and removed by DeleteExpired.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to a postgres or sqlite database and creates the schema.
// For sqlite, url is a file path.
func Open(ctx context.Context, dbType, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	var (
		conn *sql.DB
		err  error
	)
	switch dbType {
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
	case TypeSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if conn != nil {
			// one writer at a time; avoids SQLITE_BUSY between our own connections
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return New(conn), nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// New wraps a connection whose schema already exists.
func New(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// SetClock replaces the time source used for expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, id string) (*models.Session, error) {
	var (
		sess         models.Session
		revealed     int
		participants string
		history      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, creator_id, revealed, participants, vote_history, version
		FROM poker_session
		WHERE id = $1 AND expires_at > $2
	`, id, s.now().UnixMilli()).Scan(
		&sess.ID, &sess.CreatedAt, &sess.CreatorID, &revealed, &participants, &history, &sess.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}

	sess.Revealed = revealed != 0
	if err := json.Unmarshal([]byte(participants), &sess.Participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(history), &sess.VoteHistory); err != nil {
		return nil, fmt.Errorf("failed to decode vote history of %s: %w", id, err)
	}
	if len(sess.VoteHistory) == 0 {
		sess.VoteHistory = nil
	}
	return &sess, nil
}

func (s *Store) Put(ctx context.Context, sess *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return store.ErrNotFound
	}

	participants, err := json.Marshal(sess.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants of %s: %w", sess.ID, err)
	}
	history := []byte("[]")
	if len(sess.VoteHistory) > 0 {
		if history, err = json.Marshal(sess.VoteHistory); err != nil {
			return fmt.Errorf("failed to encode vote history of %s: %w", sess.ID, err)
		}
	}

	now := s.now()
	next := sess.Version + 1
	revealed := 0
	if sess.Revealed {
		revealed = 1
	}

	var result sql.Result
	if sess.Version == 0 {
		// an expired row with the same id is replaced, a live one is not
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO poker_session (id, created_at, creator_id, revealed, participants, vote_history, version, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				created_at = excluded.created_at,
				creator_id = excluded.creator_id,
				revealed = excluded.revealed,
				participants = excluded.participants,
				vote_history = excluded.vote_history,
				version = excluded.version,
				expires_at = excluded.expires_at
			WHERE poker_session.expires_at <= $9
		`, sess.ID, sess.CreatedAt, sess.CreatorID, revealed, string(participants), string(history),
			next, now.Add(ttl).UnixMilli(), now.UnixMilli())
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE poker_session
			SET created_at = $1, creator_id = $2, revealed = $3, participants = $4,
				vote_history = $5, version = $6, expires_at = $7
			WHERE id = $8 AND version = $9 AND expires_at > $10
		`, sess.CreatedAt, sess.CreatorID, revealed, string(participants), string(history),
			next, now.Add(ttl).UnixMilli(), sess.ID, sess.Version, now.UnixMilli())
	}
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	if n == 0 {
		if sess.Version == 0 {
			return store.ErrConflict
		}
		return s.missOrConflict(ctx, sess.ID, now)
	}

	sess.Version = next
	return nil
}

// missOrConflict explains an UPDATE that matched no row.
func (s *Store) missOrConflict(ctx context.Context, id string, now time.Time) error {
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT version FROM poker_session WHERE id = $1 AND expires_at > $2
	`, id, now.UnixMilli()).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check session %s: %w", id, err)
	}
	return store.ErrConflict
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM poker_session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired removes rows past their lifetime and reports how many went.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM poker_session WHERE expires_at <= $1`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
