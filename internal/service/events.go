// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business logic behind the HTTP handlers:
// authentication, audit events and feature-specific record preparation.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/store"
)

// EventService writes and reads the audit log.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		slog.Error("failed to log event", "category", category, "error", err)
		return err
	}
	return nil
}

// LogAuthEvent logs an authentication event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, metadata)
}

// LogSessionEvent logs a session lifecycle event such as an idle expiry.
func (s *EventService) LogSessionEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySession, message, userID, ipAddress, metadata)
}

// LogCollectionEvent logs a write to a managed collection.
func (s *EventService) LogCollectionEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryCollection, message, userID, ipAddress, metadata)
}

// LogSystemEvent logs a system event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, nil, "", metadata)
}

// ListEvents returns events newest first.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int64) ([]model.Event, error) {
	rows, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, e := range rows {
		events = append(events, model.Event{
			ID:        e.ID,
			Level:     e.Level,
			Category:  e.Category,
			Message:   e.Message,
			UserID:    e.UserID,
			Metadata:  e.Metadata,
			IPAddress: e.IpAddress,
			CreatedAt: e.CreatedAt,
		})
	}
	return events, nil
}

// CountEvents returns the number of stored events.
func (s *EventService) CountEvents(ctx context.Context) (int64, error) {
	return s.queries.CountEvents(ctx)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.now().UTC().Add(-olderThan)
	return s.queries.DeleteOldEvents(ctx, cutoff)
}

type actorKey struct{}

// actor is the signed-in user behind a write.
type actor struct {
	userID *int64
	ip     string
}

// WithActor attaches the user and client IP that collection audit events
// are attributed to.
func WithActor(ctx context.Context, userID *int64, ip string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{userID: userID, ip: ip})
}

// logChange records a collection write, attributed to the actor in ctx.
// It is a no-op on a nil service.
func (s *EventService) logChange(ctx context.Context, message, collection, id string) {
	if s == nil {
		return
	}
	a, _ := ctx.Value(actorKey{}).(actor)
	_ = s.LogCollectionEvent(ctx, model.EventLevelInfo, message, a.userID, a.ip,
		map[string]any{"collection": collection, "id": id})
}
