// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistence contract for sessions.

A Store keeps one Session per id and forgets it after its ttl. There are
three implementations:

  - store.Memory: in-process map, used for development and tests
  - kv.Store: Redis, one JSON value per key with native expiry
  - db.Store: one relational row per session with an expires_at column

# Versioning

Every record carries a version. Put only succeeds when the caller's
Session.Version matches what is stored, so a read-modify-write that raced
another writer fails with ErrConflict instead of silently overwriting it:

	s, err := st.Get(ctx, id)
	// mutate s
	err = st.Put(ctx, s, ttl) // ErrConflict: re-read and re-apply

Version 0 means "create": it fails with ErrConflict if a live record exists.

# Errors

  - ErrNotFound: unknown or expired id
  - ErrConflict: version mismatch

Any other error is a backend failure and should be treated as such by callers.
*/
package store
