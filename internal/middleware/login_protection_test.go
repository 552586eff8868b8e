// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLoginProtection(t *testing.T, cfg LoginProtectionConfig) *LoginProtection {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewLoginProtection(ctx, cfg)
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
}

func TestLoginProtection_Lockout(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{
		IPRateLimit: 10, IPBurst: 100, MaxFailedAttempts: 3,
		LockoutDuration: time.Minute, AttemptWindow: time.Hour,
	})
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt("Admin@Example.com"); locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}
	if locked, _ := lp.IsAccountLocked("admin@example.com"); locked {
		t.Fatal("account locked before reaching the limit")
	}

	locked, d := lp.RecordFailedAttempt("admin@example.com")
	if !locked || d != time.Minute {
		t.Fatalf("third failure: locked=%v d=%v", locked, d)
	}
	if locked, left := lp.IsAccountLocked("ADMIN@example.com"); !locked || left != time.Minute {
		t.Errorf("IsAccountLocked = %v, %v", locked, left)
	}

	now = now.Add(61 * time.Second)
	if locked, _ := lp.IsAccountLocked("admin@example.com"); locked {
		t.Error("lock should have expired")
	}
}

func TestLoginProtection_BackoffDoubles(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{
		IPRateLimit: 10, IPBurst: 100, MaxFailedAttempts: 2,
		LockoutDuration: time.Minute, AttemptWindow: time.Hour,
	})

	var lockouts []time.Duration
	for i := 0; i < 4; i++ {
		if locked, d := lp.RecordFailedAttempt("a@b.com"); locked {
			lockouts = append(lockouts, d)
		}
	}
	if len(lockouts) != 2 || lockouts[0] != time.Minute || lockouts[1] != 2*time.Minute {
		t.Errorf("lockouts = %v, want [1m 2m]", lockouts)
	}

	lp.RecordSuccessfulLogin("a@b.com")
	if locked, _ := lp.IsAccountLocked("a@b.com"); locked {
		t.Error("successful login should clear tracking")
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "81.2.69.160:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if post() != http.StatusOK || post() != http.StatusOK {
		t.Fatal("burst requests should pass")
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	req.RemoteAddr = "81.2.69.160:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET should not be limited, got %d", rec.Code)
	}
}

func TestLoginProtection_WindowResets(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{
		IPRateLimit: 10, IPBurst: 100, MaxFailedAttempts: 2,
		LockoutDuration: time.Minute, AttemptWindow: time.Minute,
	})
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	lp.RecordFailedAttempt("a@b.com")
	now = now.Add(2 * time.Minute)
	if locked, _ := lp.RecordFailedAttempt("a@b.com"); locked {
		t.Error("failures outside the window should not add up")
	}

	now = now.Add(time.Hour)
	lp.dropStale()
	lp.mu.RLock()
	n := len(lp.accounts)
	lp.mu.RUnlock()
	if n != 0 {
		t.Errorf("stale accounts = %d, want 0", n)
	}
}

func TestLoginProtection_LockoutCapped(t *testing.T) {
	lp := newTestLoginProtection(t, LoginProtectionConfig{LockoutDuration: 10 * time.Hour})
	if got := lp.lockFor(5); got != maxLockout {
		t.Errorf("lockFor(5) = %v, want %v", got, maxLockout)
	}
}
