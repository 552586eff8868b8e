// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/ocms-admin/internal/cache"
	"github.com/olegiv/ocms-admin/internal/session"
	"github.com/olegiv/ocms-admin/internal/version"
)

func newTestHealthHandler(t *testing.T) (*HealthHandler, *session.Credentials) {
	t.Helper()

	db := testDB(t)
	creds := testCredentials(t, db)
	return NewHealthHandler(db, HealthOptions{
		Creds:   creds,
		Cache:   cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}),
		DataDir: t.TempDir(),
		Version: version.Info{Version: "v1.2.3", GitCommit: "abc123"},
	}), creds
}

func TestHealthHandler_Health_Public(t *testing.T) {
	handler, creds := newTestHealthHandler(t)

	w := httptest.NewRecorder()
	handler.Health(w, requestWithSession(t, creds, get("/health"), false))

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}

	// Public response should be minimal
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %v; want healthy", resp["status"])
	}
	for _, key := range []string{"uptime", "version", "checks", "timestamp", "system"} {
		if _, ok := resp[key]; ok {
			t.Errorf("public response should not contain %s", key)
		}
	}
}

func TestHealthHandler_Health_WithoutSessionContext(t *testing.T) {
	handler, _ := newTestHealthHandler(t)

	// No LoadAndSave in front: treated as anonymous, not a panic.
	w := httptest.NewRecorder()
	handler.Health(w, get("/health?verbose=true"))

	assertStatus(t, w.Code, http.StatusOK)
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if _, ok := resp["system"]; ok {
		t.Error("anonymous response should not contain system info")
	}
}

func TestHealthHandler_Health_Authenticated(t *testing.T) {
	handler, creds := newTestHealthHandler(t)

	tests := []struct {
		name           string
		path           string
		wantSystemInfo bool
	}{
		{"full details without verbose", "/health", false},
		{"full details with verbose", "/health?verbose=true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Health(w, requestWithSession(t, creds, get(tt.path), true))

			assertStatus(t, w.Code, http.StatusOK)

			var resp HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Status != "healthy" {
				t.Errorf("status = %q; want healthy", resp.Status)
			}
			if resp.Timestamp.IsZero() {
				t.Error("timestamp should not be zero")
			}
			if resp.Uptime == "" {
				t.Error("uptime should not be empty")
			}
			if resp.Version == "" {
				t.Error("version should not be empty")
			}
			for _, name := range []string{"database", "disk", "cache"} {
				c, ok := resp.Checks[name]
				if !ok {
					t.Errorf("expected %s check in response", name)
					continue
				}
				if c.Status != "healthy" {
					t.Errorf("%s check status = %q; want healthy", name, c.Status)
				}
			}
			if tt.wantSystemInfo != (resp.System != nil) {
				t.Errorf("system info present = %v; want %v", resp.System != nil, tt.wantSystemInfo)
			}
		})
	}
}

func TestHealthHandler_Health_UnhealthyDatabase(t *testing.T) {
	db := testDB(t)
	handler := NewHealthHandler(db, HealthOptions{})

	_ = db.Close()

	w := httptest.NewRecorder()
	handler.Health(w, get("/health"))

	assertStatus(t, w.Code, http.StatusServiceUnavailable)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %v; want degraded", resp["status"])
	}
	if _, ok := resp["checks"]; ok {
		t.Error("public degraded response should not contain checks")
	}
}

func TestHealthHandler_DiskCheck(t *testing.T) {
	handler, creds := newTestHealthHandler(t)

	tests := []struct {
		name       string
		dir        func(t *testing.T) string
		wantStatus string
	}{
		{"existing directory", func(t *testing.T) string { return t.TempDir() }, "healthy"},
		{"missing directory", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nonexistent") }, "unhealthy"},
		{"not configured", func(*testing.T) string { return "" }, "healthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler.dataDir = tt.dir(t)

			w := httptest.NewRecorder()
			handler.Health(w, requestWithSession(t, creds, get("/health"), true))

			var resp HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if got := resp.Checks["disk"].Status; got != tt.wantStatus {
				t.Errorf("disk check status = %q; want %q", got, tt.wantStatus)
			}
		})
	}
}

// fakePingCache is a cache backend whose ping fails on demand.
type fakePingCache struct {
	cache.Cacher
	err error
}

func (c fakePingCache) Ping(context.Context) error { return c.err }

func TestHealthHandler_CheckCache(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{})

	tests := []struct {
		name       string
		cache      cache.Cacher
		wantStatus string
	}{
		{"disabled", nil, "healthy"},
		{"memory", mem, "healthy"},
		{"ping ok", fakePingCache{Cacher: mem}, "healthy"},
		{"ping fails", fakePingCache{Cacher: mem, err: errors.New("connection refused")}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{cache: tt.cache}
			if got := h.checkCache(context.Background()); got.Status != tt.wantStatus {
				t.Errorf("checkCache() = %+v; want status %q", got, tt.wantStatus)
			}
		})
	}
}

type fixedSubscribers int

func (n fixedSubscribers) SubscriberCount() int { return int(n) }

func TestHealthHandler_Subscriptions(t *testing.T) {
	handler, creds := newTestHealthHandler(t)
	handler.subs = fixedSubscribers(3)

	w := httptest.NewRecorder()
	handler.Health(w, requestWithSession(t, creds, get("/health"), true))

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Subscriptions != 3 {
		t.Errorf("subscriptions = %d; want 3", resp.Subscriptions)
	}
}

// testHealthProbe tests a health probe endpoint for expected status response.
func testHealthProbe(t *testing.T, path string, handlerFn func(http.ResponseWriter, *http.Request), expectedStatus string) {
	t.Helper()

	w := httptest.NewRecorder()
	handlerFn(w, get(path))

	assertStatus(t, w.Code, http.StatusOK)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != expectedStatus {
		t.Errorf("status = %q; want %s", resp["status"], expectedStatus)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler, _ := newTestHealthHandler(t)
	testHealthProbe(t, "/health/live", handler.Liveness, "alive")
}

func TestHealthHandler_Readiness(t *testing.T) {
	handler, _ := newTestHealthHandler(t)
	testHealthProbe(t, "/health/ready", handler.Readiness, "ready")
}

func TestHealthHandler_Readiness_NotReady(t *testing.T) {
	db := testDB(t)
	creds := testCredentials(t, db)
	handler := NewHealthHandler(db, HealthOptions{Creds: creds})

	// Load the session before the database goes away.
	r := requestWithSession(t, creds, get("/health/ready"), false)
	_ = db.Close()

	w := httptest.NewRecorder()
	handler.Readiness(w, r)

	assertStatus(t, w.Code, http.StatusServiceUnavailable)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "not_ready" {
		t.Errorf("status = %q; want not_ready", resp["status"])
	}
	if _, ok := resp["message"]; ok {
		t.Error("anonymous not_ready response should not contain error message")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1572864, "1.50 MB"},
		{1073741824, "1.00 GB"},
		{1610612736, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q; want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
