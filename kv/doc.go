// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kv stores sessions in Redis.

Each session is one JSON value under the key "session:{id}", written with an
expiry so Redis drops it on its own:

	SET session:{id} <json> PX <remaining lifetime>

# Compare-and-swap

Put watches the key, checks the stored version against Session.Version, and
writes inside MULTI/EXEC. If another client touches the key between the check
and EXEC, the transaction aborts and Put returns store.ErrConflict.

# Usage

	st, err := kv.Open(ctx, "redis://localhost:6379/0")
	if err != nil {
		return err
	}
	defer st.Close()
*/
package kv
