// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth generates the identifiers that act as capabilities in a session.

Possession of a participant id is the only credential the API checks, so ids
come from crypto/rand:

	sessionID := auth.NewID()   // e.g. "f3K9aQ0ZbL2x"

Ids are IDLength (12) symbols from a 62-character alphabet (0-9, A-Z, a-z).
Each symbol is drawn uniformly by rejection sampling.

# Nicknames

RandomNickname picks an adjective and a noun independently from two
16-word lists, giving 256 combinations:

	auth.RandomNickname() // "BraveOtter"

Nicknames are display-only and are never deduplicated.
*/
package auth
