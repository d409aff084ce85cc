// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package viewer keeps a local copy of a session in step with the server.

A Viewer combines three sources of snapshots: an explicit Refresh after each
local action, a fallback poll every PollInterval, and frames pushed over the
websocket stream. Every snapshot replaces the held one wholesale; a snapshot
with an older version than the held one is ignored.

# Pending Votes

SetPending records a card the user just picked. DisplayVote shows it until
the server echoes the same card as currentVote or PendingTimeout passes.
*/
package viewer
