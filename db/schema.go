// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Timestamps are epoch milliseconds and JSON columns are TEXT so the same
// statements run on PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS poker_session (
    id TEXT PRIMARY KEY,
    created_at BIGINT NOT NULL,
    creator_id TEXT NOT NULL,
    revealed INTEGER NOT NULL DEFAULT 0,
    participants TEXT NOT NULL DEFAULT '{}',
    vote_history TEXT NOT NULL DEFAULT '[]',
    version BIGINT NOT NULL,
    expires_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_session_expires_at ON poker_session(expires_at)`,
}
