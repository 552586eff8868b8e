// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-admin/internal/auth"
	"github.com/olegiv/ocms-admin/internal/cache"
	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/handler"
	"github.com/olegiv/ocms-admin/internal/middleware"
	"github.com/olegiv/ocms-admin/internal/service"
	"github.com/olegiv/ocms-admin/internal/session"
	"github.com/olegiv/ocms-admin/internal/testutil"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret1"
)

// testEnv is the API mounted the way main mounts it, behind a real server
// so cookies and streaming behave as in a browser.
type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	repos  *collection.Registry
	authn  *service.Authenticator
	events *service.EventService
	h      *Handler
}

func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	repos := collection.NewRegistry(docstore.NewSQLStore(db))
	sm := session.New(db, session.Config{IsDev: true})
	creds := session.NewCredentials(sm)
	events := service.NewEventService(db)
	authn := service.NewAuthenticator(db, nil, events)

	d := Deps{
		Creds:         creds,
		Authenticator: authn,
		Events:        events,
		Collections:   repos,
		Cache:         cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}),
		CacheTTL:      time.Minute,
		KnownRoute:    handler.IsShellRoute,
		Logger:        testutil.TestLoggerSilent(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.Routes(r, Guards{
			RequireAuth:   middleware.RequireAuth(creds),
			TrackActivity: middleware.TrackActivity(creds),
		})
	})

	srv := httptest.NewServer(sm.LoadAndSave(middleware.IdleTimeout(creds, 5*time.Minute, nil)(r)))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		t:      t,
		srv:    srv,
		client: &http.Client{Jar: jar, Timeout: 5 * time.Second},
		repos:  repos,
		authn:  authn,
		events: events,
		h:      h,
	}
}

// do sends a request with an optional JSON body and returns the response
// with its body read.
func (e *testEnv) do(method, path string, body any) (*http.Response, []byte) {
	e.t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp, data
}

// createAccount adds the test user without signing in.
func (e *testEnv) createAccount() {
	e.t.Helper()

	_, err := e.authn.Signup(context.Background(), auth.SignupInput{
		Name:            "Admin",
		Email:           testEmail,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}, "")
	require.NoError(e.t, err)
}

// signIn creates the test user and logs in.
func (e *testEnv) signIn() {
	e.t.Helper()

	e.createAccount()
	resp, body := e.do(http.MethodPost, "/api/auth/login", LoginRequest{
		LoginInput: auth.LoginInput{Email: testEmail, Password: testPassword},
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode, string(body))
}

// envelope decodes both success and error responses.
type envelope[T any] struct {
	Data  T           `json:"data"`
	Meta  *Meta       `json:"meta"`
	Error ErrorDetail `json:"error"`
}

func decode[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	Name string
	Data string
}

// readEvent returns the next event, skipping comments.
func readEvent(t *testing.T, rd *bufio.Reader) sseEvent {
	t.Helper()

	var ev sseEvent
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if ev.Name != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			ev.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = strings.TrimPrefix(line, "data: ")
		}
	}
}
