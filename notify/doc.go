// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify pushes session changes and presence to connected viewers.

# Hub

Hub fans out within one process. It implements poker.Publisher, so a
Service built WithPublisher(hub) delivers every persisted change to all
subscribers of that session:

	updates, unsubscribe := hub.Subscribe(sessionID)
	defer unsubscribe()
	for s := range updates {
		// render s
	}

Delivery is best effort. Each subscriber has a small buffer; when it is full
the update is dropped for that subscriber rather than blocking the writer.
Viewers recover on the next change or their next poll.

# Presence

Announce marks a participant online until the returned leave func runs.
Several connections for the same participant count once. Presence is
advisory and kept in memory only.

# Redis

RedisBroker publishes changes on "poker:session:{id}" so several server
processes share one stream. Run subscribes to all session channels and feeds
the local Hub.
*/
package notify
