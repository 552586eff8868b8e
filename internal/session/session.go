// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session manages server-side sessions and the signed-in state of
// the panel. Credentials is the only place that decides whether a request
// is authenticated.
package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyUser       = "user"
	KeyLastActive = "last_active"
)

// SecureCookieName is used outside development.
const SecureCookieName = "__Host-session"

// Config controls the session manager.
type Config struct {
	// Lifetime is the absolute session lifetime.
	Lifetime time.Duration
	// IdleTimeout, when positive, makes the store drop sessions that saw
	// no request for that long.
	IdleTimeout time.Duration
	IsDev       bool
}

// New creates a session manager backed by the sessions table.
func New(db *sql.DB, cfg Config) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}
	if cfg.IdleTimeout > 0 {
		sm.IdleTimeout = cfg.IdleTimeout
	}

	// Browser-session cookie unless the user asked to be remembered.
	sm.Cookie.Persist = false
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !cfg.IsDev
	if !cfg.IsDev {
		sm.Cookie.Name = SecureCookieName
	}

	return sm
}

// User is the signed-in user as kept in the session.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

func init() {
	gob.Register(User{})
}

// Credentials reads and changes the signed-in state of a request's
// session. The request context must have passed through the manager's
// LoadAndSave middleware.
type Credentials struct {
	sm  *scs.SessionManager
	now func() time.Time
}

// NewCredentials wraps a session manager.
func NewCredentials(sm *scs.SessionManager) *Credentials {
	return &Credentials{sm: sm, now: time.Now}
}

// Manager returns the underlying session manager.
func (c *Credentials) Manager() *scs.SessionManager {
	return c.sm
}

// Login stores u in a fresh session. remember selects a persistent cookie
// instead of one that ends with the browser session.
func (c *Credentials) Login(ctx context.Context, u User, remember bool) error {
	// New token on privilege change to prevent session fixation.
	if err := c.sm.RenewToken(ctx); err != nil {
		return err
	}
	c.sm.Put(ctx, KeyUser, u)
	c.sm.Put(ctx, KeyLastActive, c.now().UnixMilli())
	c.sm.RememberMe(ctx, remember)
	return nil
}

// Logout destroys the session.
func (c *Credentials) Logout(ctx context.Context) error {
	return c.sm.Destroy(ctx)
}

// Expire destroys a session that exceeded the idle limit.
func (c *Credentials) Expire(ctx context.Context) error {
	return c.sm.Destroy(ctx)
}

// IsAuthenticated reports whether the session holds a signed-in user.
func (c *Credentials) IsAuthenticated(ctx context.Context) bool {
	return c.sm.Exists(ctx, KeyUser)
}

// User returns the signed-in user.
func (c *Credentials) User(ctx context.Context) (User, bool) {
	u, ok := c.sm.Get(ctx, KeyUser).(User)
	return u, ok
}

// Touch records user activity.
func (c *Credentials) Touch(ctx context.Context) {
	c.sm.Put(ctx, KeyLastActive, c.now().UnixMilli())
}

// LastActive returns the time of the last recorded activity, or the zero
// time if none was recorded.
func (c *Credentials) LastActive(ctx context.Context) time.Time {
	ms := c.sm.GetInt64(ctx, KeyLastActive)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Token returns the session token, or "" if the session was not saved yet.
func (c *Credentials) Token(ctx context.Context) string {
	return c.sm.Token(ctx)
}
