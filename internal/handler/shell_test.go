// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testShell(t *testing.T) *ShellHandler {
	t.Helper()

	h, err := NewShellHandler(fstest.MapFS{
		ShellPage: {Data: []byte("<!DOCTYPE html><title>Admin</title>")},
		"app.js":  {Data: []byte("console.log(1)")},
	})
	if err != nil {
		t.Fatalf("NewShellHandler: %v", err)
	}
	return h
}

func TestNewShellHandler_MissingPage(t *testing.T) {
	if _, err := NewShellHandler(fstest.MapFS{}); err == nil {
		t.Fatal("expected an error without index.html")
	}
}

func TestShellHandler_Page(t *testing.T) {
	h := testShell(t)

	w := httptest.NewRecorder()
	h.Page(w, get(RouteGallery))

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q; want text/html", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q; want no-store", cc)
	}
	if !strings.Contains(w.Body.String(), "<title>Admin</title>") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestShellHandler_Assets(t *testing.T) {
	h := testShell(t)

	w := httptest.NewRecorder()
	h.Assets().ServeHTTP(w, get("/static/app.js"))

	assertStatus(t, w.Code, http.StatusOK)
	if w.Body.String() != "console.log(1)" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Assets().ServeHTTP(w, get("/static/missing.js"))
	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestIsShellRoute(t *testing.T) {
	for _, route := range ShellRoutes {
		if !IsShellRoute(route) {
			t.Errorf("IsShellRoute(%q) = false", route)
		}
	}
	for _, path := range []string{RouteLogin, "/admin", "/dashboard/", "/api/blogs", ""} {
		if IsShellRoute(path) {
			t.Errorf("IsShellRoute(%q) = true", path)
		}
	}
}

func TestNav(t *testing.T) {
	want := []string{
		"Dashboard Overview", "Testimonials", "Model Manager", "Event Display",
		"Newsletter Subscribers", "Event Manager", "Contact Me",
	}
	if len(Nav) != len(want) {
		t.Fatalf("len(Nav) = %d, want %d", len(Nav), len(want))
	}
	for i, item := range Nav {
		if item.Name != want[i] {
			t.Errorf("Nav[%d].Name = %q, want %q", i, item.Name, want[i])
		}
		if !IsShellRoute(item.Href) {
			t.Errorf("Nav[%d].Href = %q is not a shell route", i, item.Href)
		}
	}
	if LogoutItem.Href != RouteLogin {
		t.Errorf("LogoutItem.Href = %q, want %q", LogoutItem.Href, RouteLogin)
	}
}
