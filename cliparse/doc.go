// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - StoreBackend: memory, sql or redis (default: memory)
  - DatabaseURL: connection string or SQLite path (required for sql)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - RedisURL: redis:// URL (required when any backend is redis)
  - NotifyBackend: memory, redis or none (default: memory)
  - SessionTTL: lifetime measured from creation (default: 24h)
  - SweepInterval: expired-row cleanup for the sql store (default: 30m, 0 disables)
  - EnforceCreator: only the creator may reveal/reset (default: false)
  - RejectBots: answer 401 to automated clients (default: true)

# CLI Flags

	-p                Server port
	-s                Store backend
	-d                Database URL
	-t                Database type
	-r                Redis URL
	-n                Notify backend
	-ttl              Session TTL
	-sweep            Sweep interval
	-enforce-creator  Creator-only reveal/reset
	-reject-bots      Bot rejection
	-config           YAML config file
	-env-file         dotenv file (default .env)

# Environment Variables

	PORT, STORE_BACKEND, DATABASE_URL, DATABASE_TYPE, REDIS_URL,
	NOTIFY_BACKEND, SESSION_TTL, SWEEP_INTERVAL, ENFORCE_CREATOR,
	REJECT_BOTS, CONFIG_FILE

# Precedence

Lowest first:

 1. Defaults
 2. YAML file (keys are the snake_case field names, e.g. session_ttl: 2h)
 3. .env file (never overrides a variable already set)
 4. Environment variables
 5. CLI flags that were actually given

# Validation

ParseFlags returns an error if the selected backends lack what they need:

  - DATABASE_URL must be provided for the sql store
  - REDIS_URL must be provided when store or notify backend is redis
  - SESSION_TTL must be positive

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	mux := router.NewRouter(svc, hub, cfg)
*/
package cliparse
