// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores sessions in a relational database.

PostgreSQL (github.com/lib/pq) and SQLite (modernc.org/sqlite) are supported
with the same SQL:

	st, err := db.Open(ctx, db.TypePostgres, "postgres://localhost/poker")
	st, err := db.Open(ctx, db.TypeSQLite, "/var/lib/poker/sessions.db")

# Schema Creation

CreateSchema initializes the table. Open calls it; it is safe to call
multiple times - uses IF NOT EXISTS for the table and index.

# Tables

  - poker_session: one row per session

Columns:

  - id, creator_id: TEXT
  - created_at, expires_at: BIGINT epoch milliseconds
  - revealed: INTEGER 0/1
  - participants: TEXT, JSON object keyed by participant id
  - vote_history: TEXT, JSON array of rounds
  - version: BIGINT, bumped on every write

# Expiry

Rows past expires_at are invisible to Get and Put. DeleteExpired removes them;
the server runs it on a ticker.

# Indexes

  - poker_session.expires_at
*/
package db
