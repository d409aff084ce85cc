// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/quickly-estimate/models"
)

// SubscriberBuffer is the number of pending updates kept per subscriber.
const SubscriberBuffer = 8

// Hub is an in-process publish/subscribe point keyed by session id.
type Hub struct {
	mu           sync.Mutex
	sessions     map[string]map[chan *models.Session]struct{}
	online       map[string]map[string]int
	presenceSubs map[string]map[chan []string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]map[chan *models.Session]struct{}),
		online:       make(map[string]map[string]int),
		presenceSubs: make(map[string]map[chan []string]struct{}),
	}
}

// Publish delivers s to local subscribers. It never fails.
func (h *Hub) Publish(_ context.Context, s *models.Session) error {
	h.Deliver(s)
	return nil
}

// Deliver hands each subscriber of s.ID its own copy without blocking.
func (h *Hub) Deliver(s *models.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.sessions[s.ID] {
		select {
		case ch <- s.Clone():
		default:
			// slow subscriber, drop
		}
	}
}

// Subscribe returns a channel of updates for sessionID and a func that
// closes it. The func is safe to call more than once.
func (h *Hub) Subscribe(sessionID string) (<-chan *models.Session, func()) {
	ch := make(chan *models.Session, SubscriberBuffer)

	h.mu.Lock()
	subs, ok := h.sessions[sessionID]
	if !ok {
		subs = make(map[chan *models.Session]struct{})
		h.sessions[sessionID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.sessions, sessionID)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers counts live subscriptions for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Announce marks participantID online in sessionID until leave is called.
func (h *Hub) Announce(sessionID, participantID string) (leave func()) {
	h.mu.Lock()
	members, ok := h.online[sessionID]
	if !ok {
		members = make(map[string]int)
		h.online[sessionID] = members
	}
	members[participantID]++
	if members[participantID] == 1 {
		h.broadcastPresenceLocked(sessionID)
	}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			members := h.online[sessionID]
			members[participantID]--
			if members[participantID] > 0 {
				return
			}
			delete(members, participantID)
			if len(members) == 0 {
				delete(h.online, sessionID)
			}
			h.broadcastPresenceLocked(sessionID)
		})
	}
}

// Online returns the set of participants currently connected to sessionID.
func (h *Hub) Online(sessionID string) map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]bool, len(h.online[sessionID]))
	for id := range h.online[sessionID] {
		out[id] = true
	}
	return out
}

// SubscribePresence returns a channel receiving the sorted online ids of
// sessionID whenever someone comes or goes.
func (h *Hub) SubscribePresence(sessionID string) (<-chan []string, func()) {
	ch := make(chan []string, SubscriberBuffer)

	h.mu.Lock()
	subs, ok := h.presenceSubs[sessionID]
	if !ok {
		subs = make(map[chan []string]struct{})
		h.presenceSubs[sessionID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.presenceSubs, sessionID)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) broadcastPresenceLocked(sessionID string) {
	subs := h.presenceSubs[sessionID]
	if len(subs) == 0 {
		return
	}

	ids := make([]string, 0, len(h.online[sessionID]))
	for id := range h.online[sessionID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for ch := range subs {
		select {
		case ch <- append([]string(nil), ids...):
		default:
		}
	}
}
