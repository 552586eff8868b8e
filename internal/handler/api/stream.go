// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/idle"
	"github.com/olegiv/ocms-admin/internal/middleware"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/util"
)

// Stream event names.
const (
	EventSnapshot = "snapshot"
	EventExpired  = "expired"
)

// Messages of the expired event.
const (
	ExpiredTitle   = "Session expired"
	ExpiredMessage = middleware.ReasonIdleExpired
)

// heartbeatInterval keeps idle proxies from closing the stream.
const heartbeatInterval = 25 * time.Second

// SnapshotEvent carries the ordered items of a collection.
type SnapshotEvent[T any] struct {
	Collection string `json:"collection"`
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
}

// ExpiredEvent is sent once before the stream closes on idle expiry.
type ExpiredEvent struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// Stream returns a handler for GET /api/{feature}/stream. It sends the
// current list at once and again after every change. Each stream runs an
// idle monitor registered under the session token; when it expires the
// session is destroyed, an expired event is sent and the stream ends.
func Stream[T any](h *Handler, repo *collection.Repository[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rc := http.NewResponseController(w)
		// Streams outlive the server's write timeout.
		_ = rc.SetWriteDeadline(time.Time{})

		updates, stop, err := repo.Watch(ctx)
		if err != nil {
			h.writeServiceError(w, r, err, "Failed to subscribe")
			return
		}
		defer stop()

		expired := make(chan struct{})
		mon := idle.New(func() { close(expired) },
			idle.WithLimit(h.idleLimit),
			idle.WithInterval(h.idleInterval),
			idle.WithLastActivity(h.creds.LastActive(ctx)),
		)
		defer mon.Stop()
		if token := h.creds.Token(ctx); token != "" {
			defer h.monitors.Add(token, mon)()
		}
		go mon.Run(ctx)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		_ = rc.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-mon.Done():
				// Stopped from outside, by logout.
				return

			case <-expired:
				h.expireStream(w, r)
				_ = rc.Flush()
				return

			case items, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, EventSnapshot, SnapshotEvent[T]{
					Collection: repo.Name(),
					Items:      items,
					Total:      len(items),
				}); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}

			case <-heartbeat.C:
				if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}

// expireStream destroys the idle session and tells the client why.
func (h *Handler) expireStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := h.creds.User(ctx)

	if err := h.creds.Expire(ctx); err != nil {
		h.logger.Error("failed to expire idle session", "error", err, "user_id", u.ID)
	} else {
		h.logger.Info("idle session expired", "user_id", u.ID, "path", r.URL.Path)
		_ = h.events.LogSessionEvent(ctx, model.EventLevelInfo, "Session expired due to inactivity",
			&u.ID, util.ClientIP(r), map[string]any{"stream": r.URL.Path})
	}

	d := middleware.Decision{RedirectTo: middleware.LoginPath, Reason: middleware.ReasonIdleExpired}
	_ = writeEvent(w, EventExpired, ExpiredEvent{
		Title:    ExpiredTitle,
		Message:  ExpiredMessage,
		Redirect: d.Location(),
	})
}

// writeEvent writes one server-sent event with a JSON payload.
func writeEvent(w io.Writer, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
