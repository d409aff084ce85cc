// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

// IDLength is the number of base62 symbols in a session or participant id.
const IDLength = 12

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewID returns a random URL-safe id of IDLength base62 symbols.
// Each symbol is uniform over the alphabet (62^12 ≈ 3.2e21 ids).
func NewID() string {
	return randomBase62(IDLength)
}

// randomBase62 draws bytes from crypto/rand and rejects values >= 248
// so that byte % 62 stays uniform.
func randomBase62(n int) string {
	const limit = 256 - 256%len(base62Chars)

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)
	for len(out) < n {
		// crypto/rand.Read never returns an error on supported platforms
		rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, base62Chars[int(b)%len(base62Chars)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

var adjectives = [...]string{
	"Happy", "Clever", "Brave", "Swift", "Wise", "Kind", "Bold", "Calm",
	"Eager", "Friendly", "Gentle", "Jolly", "Keen", "Lively", "Merry", "Noble",
}

var nouns = [...]string{
	"Panda", "Tiger", "Eagle", "Dolphin", "Fox", "Owl", "Bear", "Wolf",
	"Hawk", "Lion", "Falcon", "Otter", "Rabbit", "Deer", "Penguin", "Koala",
}

// RandomNickname returns an Adjective+Noun display name.
// Collisions between participants are allowed.
func RandomNickname() string {
	return adjectives[mrand.IntN(len(adjectives))] + nouns[mrand.IntN(len(nouns))]
}
