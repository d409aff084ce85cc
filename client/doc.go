// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the Quickly Estimate HTTP API.

	c := client.New("http://localhost:3318", nil)
	created, err := c.CreateSession(ctx, "Alice")
	err = c.Vote(ctx, created.SessionID, created.CreatorID, client.Card("5"))

Non-2xx answers are returned as *APIError carrying the status code and the
server's message. IsNotFound reports a 404.

# Live Updates

Subscribe opens the websocket stream of a session:

	stream, err := c.Subscribe(ctx, sessionID, participantID)
	defer stream.Close()
	for {
		frame, err := stream.Next()
		...
	}

Forward decodes session frames into a channel, which is what viewer.Run
consumes.
*/
package client
