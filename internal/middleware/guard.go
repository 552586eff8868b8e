// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the admin panel:
// the route guard, idle expiry, CSRF, rate limiting and security headers.
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/ocms-admin/internal/session"
)

// Paths used by the guard.
const (
	LoginPath   = "/"
	LandingPath = "/dashboard"
	apiPrefix   = "/api/"
)

// Reasons shown on the login page after a redirect.
const (
	ReasonLoginRequired = "You must log in to access the dashboard."
	ReasonIdleExpired   = "You have been logged out due to inactivity."
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser holds the signed-in session.User.
const ContextKeyUser ContextKey = "user"

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect,omitempty"`
	From       string `json:"from,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Check decides whether a request for requested may proceed. Denied
// decisions point back to the login page with the requested location.
func Check(authenticated bool, requested string) Decision {
	if authenticated {
		return Decision{Allowed: true}
	}
	return Decision{
		RedirectTo: LoginPath,
		From:       requested,
		Reason:     ReasonLoginRequired,
	}
}

// Location returns the redirect URL with from and reason as query values.
func (d Decision) Location() string {
	q := url.Values{}
	if d.From != "" {
		q.Set("from", d.From)
	}
	if d.Reason != "" {
		q.Set("reason", d.Reason)
	}
	if len(q) == 0 {
		return d.RedirectTo
	}
	return d.RedirectTo + "?" + q.Encode()
}

// IsAPIRequest reports whether r targets the JSON API.
func IsAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, apiPrefix)
}

// deny answers a rejected request: 303 to the login page for HTML
// routes, 401 JSON for the API.
func deny(w http.ResponseWriter, r *http.Request, d Decision) {
	if IsAPIRequest(r) {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", d.Reason, map[string]string{
			"redirect": d.Location(),
			"from":     d.From,
			"reason":   d.Reason,
		})
		return
	}
	http.Redirect(w, r, d.Location(), http.StatusSeeOther)
}

// RequireAuth guards a route group. Authenticated requests get the
// session user in their context.
func RequireAuth(creds *session.Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := creds.User(r.Context())
			d := Check(ok, r.URL.RequestURI())
			if !d.Allowed {
				deny(w, r, d)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectIfAuthenticated sends signed-in users away from the login page.
func RedirectIfAuthenticated(creds *session.Credentials, to string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, to, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the signed-in user stored by RequireAuth.
func GetUser(r *http.Request) (session.User, bool) {
	u, ok := r.Context().Value(ContextKeyUser).(session.User)
	return u, ok
}

// GetUserIDPtr returns the signed-in user's ID for event logging, or nil.
func GetUserIDPtr(r *http.Request) *int64 {
	if u, ok := GetUser(r); ok {
		id := u.ID
		return &id
	}
	return nil
}

// ReturnTo returns from when it is a local path that known accepts,
// otherwise LandingPath.
func ReturnTo(from string, known func(path string) bool) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return LandingPath
	}
	u, err := url.Parse(from)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return LandingPath
	}
	if known != nil && !known(u.Path) {
		return LandingPath
	}
	return u.RequestURI()
}
