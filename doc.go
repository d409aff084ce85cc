// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Estimate API server.

Quickly Estimate runs planning-poker sessions: participants join a room,
pick a card from a fixed deck, reveal together, and reset for the next
round. Revealed rounds are archived in the session's history.

# Starting the Server

With no configuration the server keeps sessions in memory:

	go run .

Or with flags:

	go run . -p 3318 -s sql -t sqlite -d ./sessions.db

# Configuration

Settings come from defaults, then a YAML file (-config / CONFIG_FILE), then
.env, then the environment, then flags:

  - PORT (-p): Server port (default: 3318)
  - STORE_BACKEND (-s): memory, sql or redis
  - DATABASE_URL (-d), DATABASE_TYPE (-t): for the sql backend (sqlite or postgres)
  - REDIS_URL (-r): for the redis store or notify backend
  - NOTIFY_BACKEND (-n): memory, redis or none
  - SESSION_TTL (-ttl): session lifetime from creation (default: 24h)
  - SWEEP_INTERVAL (-sweep): expired-row cleanup for the sql backend
  - ENFORCE_CREATOR (-enforce-creator): only the creator may reveal or reset
  - REJECT_BOTS (-reject-bots): refuse mutating requests from crawlers

# Architecture

  - poker: session state machine, masking and stats
  - store, kv, db: session storage (memory, Redis, SQL)
  - notify: change fan-out and presence, optionally over Redis pub/sub
  - handlers: HTTP and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: request ids, CORS, logging, bot filter, JSON helpers
  - models: domain, view and request/response types
  - auth: id and nickname generation
  - cliparse: Configuration parsing
  - client, viewer, cmd/pokerctl: Go client, sync loop and CLI

See package documentation for each component.
*/
package main
