// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"sync"
)

// Subscription is a live listener on one collection. Snapshots arrive on C.
// A subscriber that falls behind only ever sees the most recent snapshot:
// an undelivered snapshot is replaced by a newer one.
type Subscription struct {
	Collection string

	c      chan Snapshot
	doneCh chan struct{}
	hub    *Hub
	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// C returns the channel snapshots are delivered on. It is closed by Cancel.
func (s *Subscription) C() <-chan Snapshot {
	return s.c
}

// Cancel unregisters the subscription and closes its channel. Safe to call
// more than once and from any goroutine.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)

		s.mu.Lock()
		s.closed = true
		close(s.c)
		s.mu.Unlock()

		close(s.doneCh)
	})
}

func (s *Subscription) done() <-chan struct{} {
	return s.doneCh
}

// offer delivers snap, replacing any snapshot still waiting in the buffer.
func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.c <- snap:
		return
	default:
	}

	// Buffer full: drop the stale snapshot. Only offer sends, and it holds
	// s.mu, so the slot is free for the send below.
	select {
	case <-s.c:
	default:
	}
	s.c <- snap
}

// Hub fans snapshots out to the subscribers of each collection.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[*Subscription]struct{}
	versions map[string]uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:     make(map[string]map[*Subscription]struct{}),
		versions: make(map[string]uint64),
	}
}

func (h *Hub) add(collection string) *Subscription {
	sub := &Subscription{
		Collection: collection,
		c:          make(chan Snapshot, 1),
		doneCh:     make(chan struct{}),
		hub:        h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[collection]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[collection] = set
	}
	set[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subs[sub.Collection]
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.Collection)
	}
}

// Publish stamps snap with the next version for its collection and offers
// it to every subscriber of that collection.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	h.versions[snap.Collection]++
	snap.Version = h.versions[snap.Collection]
	subs := make([]*Subscription, 0, len(h.subs[snap.Collection]))
	for sub := range h.subs[snap.Collection] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.offer(snap)
	}
}

// deliver sends snap to a single subscriber, stamped with the current
// version of its collection.
func (h *Hub) deliver(sub *Subscription, snap Snapshot) {
	h.mu.RLock()
	snap.Version = h.versions[snap.Collection]
	h.mu.RUnlock()
	sub.offer(snap)
}

// HasSubscribers reports whether anyone is listening on collection.
func (h *Hub) HasSubscribers(collection string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection]) > 0
}

// SubscriberCount returns the number of live subscriptions across all
// collections.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}
