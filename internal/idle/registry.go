// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package idle

import "sync"

// Registry groups monitors by session so activity reported on one request
// reaches every open view of that session.
type Registry struct {
	mu       sync.Mutex
	monitors map[string]map[*Monitor]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{monitors: make(map[string]map[*Monitor]struct{})}
}

// Add registers m under key and returns a function that removes it.
func (r *Registry) Add(key string, m *Monitor) func() {
	r.mu.Lock()
	set, ok := r.monitors[key]
	if !ok {
		set = make(map[*Monitor]struct{})
		r.monitors[key] = set
	}
	set[m] = struct{}{}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		delete(r.monitors[key], m)
		if len(r.monitors[key]) == 0 {
			delete(r.monitors, key)
		}
	}
}

// Touch records activity on every monitor registered under key.
func (r *Registry) Touch(key string) {
	for _, m := range r.list(key) {
		m.Touch()
	}
}

// Stop stops every monitor registered under key.
func (r *Registry) Stop(key string) {
	for _, m := range r.list(key) {
		m.Stop()
	}
}

// Len returns the number of registered monitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, set := range r.monitors {
		n += len(set)
	}
	return n
}

func (r *Registry) list(key string) []*Monitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Monitor, 0, len(r.monitors[key]))
	for m := range r.monitors[key] {
		out = append(out, m)
	}
	return out
}
