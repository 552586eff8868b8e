// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package idle detects user inactivity. A Monitor records the time of the
// last activity, checks it on a fixed interval and fires a callback exactly
// once when the idle limit is exceeded.
package idle

import (
	"context"
	"sync"
	"time"
)

// Defaults for the admin panel.
const (
	DefaultLimit    = 5 * time.Minute
	DefaultInterval = time.Second
)

// State is the lifecycle state of a Monitor.
type State int

const (
	// Active monitors accept activity and run checks.
	Active State = iota
	// Expired monitors have fired their callback. Terminal.
	Expired
	// Stopped monitors were detached before expiring. Terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// HasExpired reports whether more than limit has elapsed since last.
// Exactly limit is still active.
func HasExpired(last, now time.Time, limit time.Duration) bool {
	return now.Sub(last) > limit
}

// Monitor tracks activity for one session view.
type Monitor struct {
	limit    time.Duration
	interval time.Duration
	now      func() time.Time
	onExpire func()

	mu    sync.Mutex
	start time.Time
	last  time.Time
	state State

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLimit sets the idle limit.
func WithLimit(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.limit = d
		}
	}
}

// WithInterval sets how often Run checks for expiry.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithLastActivity starts the monitor from an activity recorded earlier,
// such as the session's last interaction, instead of from now.
func WithLastActivity(t time.Time) Option {
	return func(m *Monitor) { m.start = t }
}

// New creates an active monitor whose last activity is now unless
// WithLastActivity says otherwise. onExpire may be nil.
func New(onExpire func(), opts ...Option) *Monitor {
	m := &Monitor{
		limit:    DefaultLimit,
		interval: DefaultInterval,
		now:      time.Now,
		onExpire: onExpire,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.last = m.start
	if m.last.IsZero() {
		m.last = m.now()
	}
	return m
}

// Touch records activity. It has no effect once the monitor expired or
// stopped.
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Active {
		m.last = m.now()
	}
}

// Check expires the monitor if the idle limit has been exceeded. It returns
// true only for the check that caused the expiry.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	if m.state != Active || !HasExpired(m.last, m.now(), m.limit) {
		m.mu.Unlock()
		return false
	}
	m.state = Expired
	m.mu.Unlock()

	if m.onExpire != nil {
		m.onExpire()
	}
	return true
}

// Run checks for expiry every interval until the monitor expires, is
// stopped, or ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			if m.Check() {
				return
			}
		}
	}
}

// Stop detaches the monitor. A stopped monitor never fires. Safe to call
// more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		if m.state == Active {
			m.state = Stopped
		}
		m.mu.Unlock()
		close(m.stopCh)
	})
}

// Done is closed once the monitor was stopped.
func (m *Monitor) Done() <-chan struct{} {
	return m.stopCh
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastActivity returns the time of the last recorded activity.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Remaining returns the time left before expiry, or zero if none is left.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return 0
	}
	left := m.limit - m.now().Sub(m.last)
	if left < 0 {
		return 0
	}
	return left
}
