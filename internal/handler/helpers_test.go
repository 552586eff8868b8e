// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ocms-admin/internal/session"
	"github.com/olegiv/ocms-admin/internal/testutil"
)

// testDB returns a migrated database closed at the end of the test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db
}

// testCredentials returns credentials backed by db's sessions table.
func testCredentials(t *testing.T, db *sql.DB) *session.Credentials {
	t.Helper()
	return session.NewCredentials(session.New(db, session.Config{IsDev: true}))
}

// requestWithSession loads an empty session into the request context and,
// when signedIn, logs a user in.
func requestWithSession(t *testing.T, creds *session.Credentials, r *http.Request, signedIn bool) *http.Request {
	t.Helper()

	ctx, err := creds.Manager().Load(r.Context(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	if signedIn {
		if err := creds.Login(ctx, session.User{ID: 1, Email: "admin@example.com"}, false); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	return r.WithContext(ctx)
}

// get builds a GET request.
func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
