// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/store"
	"github.com/olegiv/ocms-admin/internal/testutil"
)

func TestLogEvent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	now := time.Now().UTC()
	user, err := store.New(db).CreateUser(ctx, store.CreateUserParams{
		Email:        "editor@example.com",
		PasswordHash: "hash",
		Role:         "admin",
		Name:         "Editor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	userID := user.ID
	err = svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryCollection, "Blog created", &userID, "192.168.1.100", map[string]any{
		"collection": "blogs",
	})
	if err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	events, err := svc.ListEvents(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}

	e := events[0]
	if e.Category != model.EventCategoryCollection || e.Message != "Blog created" {
		t.Errorf("event = %+v", e)
	}
	if !e.UserID.Valid || e.UserID.Int64 != user.ID {
		t.Errorf("UserID = %+v, want %d", e.UserID, user.ID)
	}
	if e.Metadata != `{"collection":"blogs"}` {
		t.Errorf("Metadata = %s", e.Metadata)
	}
	if e.IPAddress != "192.168.1.100" {
		t.Errorf("IPAddress = %s", e.IPAddress)
	}
}

func TestLogEvent_NilUserAndMetadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	if err := svc.LogSystemEvent(ctx, model.EventLevelWarning, "Cache unavailable", nil); err != nil {
		t.Fatalf("LogSystemEvent failed: %v", err)
	}

	events, _ := svc.ListEvents(ctx, 10, 0)
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	if events[0].UserID.Valid {
		t.Error("UserID should be NULL")
	}
	if events[0].Metadata != "{}" {
		t.Errorf("Metadata = %q, want {}", events[0].Metadata)
	}
}

func TestCategoryHelpers(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	_ = svc.LogAuthEvent(ctx, model.EventLevelInfo, "login", nil, "", nil)
	_ = svc.LogSessionEvent(ctx, model.EventLevelInfo, "expired", nil, "", nil)
	_ = svc.LogCollectionEvent(ctx, model.EventLevelInfo, "write", nil, "", nil)

	events, _ := svc.ListEvents(ctx, 10, 0)
	got := map[string]bool{}
	for _, e := range events {
		got[e.Category] = true
	}
	for _, c := range []string{model.EventCategoryAuth, model.EventCategorySession, model.EventCategoryCollection} {
		if !got[c] {
			t.Errorf("missing event with category %q", c)
		}
	}

	n, err := svc.CountEvents(ctx)
	if err != nil || n != 3 {
		t.Errorf("CountEvents = %d, %v; want 3", n, err)
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	_ = svc.LogSystemEvent(ctx, model.EventLevelInfo, "old", nil)

	svc.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	_ = svc.LogSystemEvent(ctx, model.EventLevelInfo, "new", nil)

	if err := svc.DeleteOldEvents(ctx, 7*24*time.Hour); err != nil {
		t.Fatalf("DeleteOldEvents failed: %v", err)
	}

	events, _ := svc.ListEvents(ctx, 10, 0)
	if len(events) != 1 || events[0].Message != "new" {
		t.Errorf("remaining events = %+v, want only 'new'", events)
	}
}
