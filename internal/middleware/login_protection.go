// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/ocms-admin/internal/util"
)

// MsgTooManyAttempts is shown when the per-IP login limit is hit.
const MsgTooManyAttempts = "Too many login attempts. Please wait a moment and try again."

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

// LoginProtection throttles auth POSTs per client IP and locks accounts
// after repeated failed logins. It satisfies service.LockoutTracker.
type LoginProtection struct {
	ipLimiters *limiterCache[string]
	now        func() time.Time

	mu       sync.RWMutex
	accounts map[string]*accountFailures

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

// accountFailures is the failure history of one email address.
type accountFailures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is auth requests per second per IP (default 0.5).
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account (default 5).
	MaxFailedAttempts int
	// LockoutDuration doubles with every further lockout (default 15m).
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance. Stale entries
// are swept until ctx is done.
func NewLoginProtection(ctx context.Context, cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		now:               time.Now,
		accounts:          make(map[string]*accountFailures),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}

	go lp.sweep(ctx)

	return lp
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lockFor returns the lock duration for the given number of earlier
// lockouts.
func (lp *LoginProtection) lockFor(previous int) time.Duration {
	d := lp.lockoutDuration
	for i := 0; i < previous && d < maxLockout; i++ {
		d *= 2
	}
	return min(d, maxLockout)
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.RLock()
	f, ok := lp.accounts[accountKey(email)]
	lp.mu.RUnlock()
	if !ok {
		return false, 0
	}

	now := lp.now()
	if now.Before(f.lockedUntil) {
		return true, f.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login and reports whether it locked
// the account, with the lock duration.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[key]
	if !ok {
		f = &accountFailures{}
		lp.accounts[key] = f
	}
	if f.count == 0 || now.Sub(f.windowStart) > lp.attemptWindow {
		f.count = 0
		f.windowStart = now
	}
	f.count++
	slog.Debug("failed login recorded", "email", key, "count", f.count)

	if f.count < lp.maxFailedAttempts {
		return false, 0
	}

	d := lp.lockFor(f.lockouts)
	f.lockedUntil = now.Add(d)
	f.lockouts++
	f.count = 0

	slog.Warn("account locked due to failed attempts", "email", key, "lockouts", f.lockouts, "duration", d)
	return true, d
}

// RecordSuccessfulLogin forgets the failure history of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

func (lp *LoginProtection) sweep(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lp.dropStale()
		}
	}
}

// dropStale removes unlocked accounts whose attempt window has passed and
// resets the IP limiters once they grow too large.
func (lp *LoginProtection) dropStale() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login rate limiters due to size")
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, f := range lp.accounts {
		if now.After(f.lockedUntil) && now.Sub(f.windowStart) > lp.attemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// Middleware rate limits login and signup POSTs per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := util.ClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", MsgTooManyAttempts, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
