// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package idle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestHasExpired(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"just active", 0, false},
		{"299 seconds", 299 * time.Second, false},
		{"exactly the limit", 300 * time.Second, false},
		{"301 seconds", 301 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasExpired(base, base.Add(tt.elapsed), DefaultLimit); got != tt.want {
				t.Errorf("HasExpired(+%v) = %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestMonitor_ExpiresOnce(t *testing.T) {
	clock := newFakeClock()
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithClock(clock.Now))

	clock.Advance(301 * time.Second)
	if !m.Check() {
		t.Fatal("Check() after 301s = false, want true")
	}
	if m.Check() {
		t.Error("second Check() = true, want false")
	}
	if got := fired.Load(); got != 1 {
		t.Errorf("onExpire fired %d times, want 1", got)
	}
	if m.State() != Expired {
		t.Errorf("State() = %v, want expired", m.State())
	}
}

func TestMonitor_NotExpiredBeforeLimit(t *testing.T) {
	clock := newFakeClock()
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithClock(clock.Now))

	clock.Advance(299 * time.Second)
	if m.Check() {
		t.Error("Check() after 299s = true, want false")
	}
	if fired.Load() != 0 {
		t.Error("onExpire fired before the limit")
	}
	if got := m.Remaining(); got != time.Second {
		t.Errorf("Remaining() = %v, want 1s", got)
	}
}

func TestMonitor_WithLastActivity(t *testing.T) {
	clock := newFakeClock()
	m := New(nil, WithClock(clock.Now), WithLastActivity(clock.Now().Add(-290*time.Second)))

	if m.Check() {
		t.Fatal("expired before the limit")
	}
	clock.Advance(11 * time.Second)
	if !m.Check() {
		t.Error("monitor started 290s ago should expire 11s later")
	}
}

func TestMonitor_TouchResets(t *testing.T) {
	clock := newFakeClock()
	m := New(nil, WithClock(clock.Now))

	clock.Advance(200 * time.Second)
	m.Touch()
	clock.Advance(200 * time.Second)

	if m.Check() {
		t.Error("Check() expired although activity was recorded 200s ago")
	}
	if !m.LastActivity().Equal(clock.Now().Add(-200 * time.Second)) {
		t.Errorf("LastActivity() = %v", m.LastActivity())
	}
}

func TestMonitor_TouchAfterExpiryIgnored(t *testing.T) {
	clock := newFakeClock()
	m := New(nil, WithClock(clock.Now))

	clock.Advance(10 * time.Minute)
	m.Check()
	m.Touch()

	if m.State() != Expired {
		t.Errorf("State() = %v, want expired", m.State())
	}
	if m.Remaining() != 0 {
		t.Errorf("Remaining() = %v, want 0", m.Remaining())
	}
}

func TestMonitor_StopPreventsExpiry(t *testing.T) {
	clock := newFakeClock()
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithClock(clock.Now))

	m.Stop()
	m.Stop()

	clock.Advance(time.Hour)
	if m.Check() {
		t.Error("Check() on stopped monitor = true")
	}
	if fired.Load() != 0 {
		t.Error("stopped monitor fired")
	}
	if m.State() != Stopped {
		t.Errorf("State() = %v, want stopped", m.State())
	}
	select {
	case <-m.Done():
	default:
		t.Error("Done() not closed after Stop")
	}
}

func TestMonitor_CustomLimit(t *testing.T) {
	clock := newFakeClock()
	m := New(nil, WithClock(clock.Now), WithLimit(time.Minute), WithInterval(0))

	if m.interval != DefaultInterval {
		t.Errorf("interval = %v, want default for non-positive value", m.interval)
	}

	clock.Advance(61 * time.Second)
	if !m.Check() {
		t.Error("Check() after 61s with 1m limit = false")
	}
}

func TestMonitor_RunExpires(t *testing.T) {
	expired := make(chan struct{})
	m := New(func() { close(expired) },
		WithLimit(20*time.Millisecond),
		WithInterval(5*time.Millisecond),
	)

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not expire")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after expiry")
	}
}

func TestMonitor_RunStopsOnContext(t *testing.T) {
	m := New(nil, WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if m.State() != Stopped {
		t.Errorf("State() = %v, want stopped", m.State())
	}
}

func TestRegistry(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry()

	a := New(nil, WithClock(clock.Now))
	b := New(nil, WithClock(clock.Now))
	other := New(nil, WithClock(clock.Now))

	removeA := r.Add("session-1", a)
	r.Add("session-1", b)
	r.Add("session-2", other)

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	clock.Advance(4 * time.Minute)
	r.Touch("session-1")
	clock.Advance(2 * time.Minute)

	if a.Check() || b.Check() {
		t.Error("touched monitors should still be active")
	}
	if !other.Check() {
		t.Error("untouched monitor should have expired")
	}

	removeA()
	removeA()
	if r.Len() != 2 {
		t.Errorf("Len() after remove = %d, want 2", r.Len())
	}

	r.Stop("session-1")
	if b.State() != Stopped {
		t.Errorf("b.State() = %v, want stopped", b.State())
	}
}

func TestState_String(t *testing.T) {
	if Active.String() != "active" || Expired.String() != "expired" || Stopped.String() != "stopped" {
		t.Error("unexpected state names")
	}
	if State(42).String() != "unknown" {
		t.Error("unknown state should stringify as unknown")
	}
}
