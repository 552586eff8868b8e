// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/ocms-admin/internal/idle"
	"github.com/olegiv/ocms-admin/internal/session"
)

var timeNow = time.Now

// IdleExpiredFunc is called after a session was expired for inactivity.
type IdleExpiredFunc func(r *http.Request, u session.User)

// IdleTimeout destroys sessions whose last recorded activity is more than
// limit ago and answers the request like the guard does, with the
// inactivity reason.
func IdleTimeout(creds *session.Credentials, limit time.Duration, onExpire IdleExpiredFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := creds.User(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			last := creds.LastActive(r.Context())
			if last.IsZero() || !idle.HasExpired(last, timeNow(), limit) {
				next.ServeHTTP(w, r)
				return
			}

			if err := creds.Expire(r.Context()); err != nil {
				slog.Error("failed to expire idle session", "error", err, "user_id", u.ID)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Session could not be closed", nil)
				return
			}
			slog.Info("idle session expired", "user_id", u.ID, "idle_for", timeNow().Sub(last).Round(time.Second))
			if onExpire != nil {
				onExpire(r, u)
			}

			deny(w, r, Decision{RedirectTo: LoginPath, From: r.URL.RequestURI(), Reason: ReasonIdleExpired})
		})
	}
}

// TrackActivity records the request as user activity for signed-in
// sessions. Apply it to routes that are user interactions, not to
// background streams.
func TrackActivity(creds *session.Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds.IsAuthenticated(r.Context()) {
				creds.Touch(r.Context())
			}
			next.ServeHTTP(w, r)
		})
	}
}
