// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poker implements the planning-poker session state machine.

# Lifecycle

A session moves between two phases:

	voting --Reveal--> revealed --Reset--> voting

  - CreateSession: new session with the creator already joined
  - Join: adds a participant with a fresh id (never idempotent)
  - Vote: sets or clears a participant's card, in either phase
  - Reveal: first reveal of a round archives the cast votes as a RoundHistory
    entry; repeated reveals change nothing
  - Reset: clears every vote and hides results; history is kept

Round numbers are len(history)+1 at archive time, so they stay contiguous.
A reveal with no votes archives nothing.

# Concurrency

Service holds no per-session state. Every transition is a read-modify-write
against a store.Store, retried when the store reports a version conflict.
Concurrent votes on one session therefore never overwrite each other.

# Errors

  - ErrSessionNotFound: unknown, expired, or unreadable session
  - ErrParticipantNotFound: participant id not in the session
  - ErrInvalidCard, ErrInvalidNickname: bad input
  - ErrUnauthorized: reveal/reset by a non-creator with enforcement enabled
  - ErrStorage: backend failure (see StorageError)

A failed read matches both ErrSessionNotFound and ErrStorage.

# Views

Project masks a session for one viewer: votes of others stay hidden until
reveal, and statistics are only computed for revealed rounds.
*/
package poker
