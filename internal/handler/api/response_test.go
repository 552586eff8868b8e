// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ocms-admin/internal/auth"
	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/service"
	"github.com/olegiv/ocms-admin/internal/testutil"
)

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d", expected, w.Code)
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code '%s', got %s", expectedCode, resp.Error.Code)
	}
	return resp
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusOK, map[string]string{"key": "value"})

	assertStatusCode(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %s", ct)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["key"] != "value" {
		t.Errorf("expected key 'value', got %s", resp["key"])
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	WriteSuccess(w, map[string]string{"name": "test"}, &Meta{Total: 100, Page: 1, PerPage: 10, Pages: 10})

	assertStatusCode(t, w, http.StatusOK)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Meta == nil {
		t.Fatal("expected meta to be present")
	}
	if resp.Meta.Total != 100 || resp.Meta.Pages != 10 {
		t.Errorf("meta = %+v", *resp.Meta)
	}
}

func TestWriteSuccess_EmptyListIsArray(t *testing.T) {
	w := httptest.NewRecorder()

	WriteSuccess(w, []string{}, &Meta{})

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if string(raw["data"]) != "[]" {
		t.Errorf("data = %s, want []", raw["data"])
	}
}

func TestWriteErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantErr  string
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "Bad input", nil) }, http.StatusBadRequest, "bad_request"},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "Missing") }, http.StatusNotFound, "not_found"},
		{"unauthorized", func(w http.ResponseWriter) { WriteUnauthorized(w, "Sign in") }, http.StatusUnauthorized, "unauthorized"},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "Oops") }, http.StatusInternalServerError, "internal_error"},
		{"validation", func(w http.ResponseWriter) {
			WriteValidationError(w, map[string]string{"email": "Invalid email format", "name": "Required field"})
		}, http.StatusUnprocessableEntity, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assertStatusCode(t, w, tt.wantCode)
			assertErrorResponse(t, w, tt.wantErr)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	h := &Handler{logger: testutil.TestLoggerSilent()}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"service validation", &service.ValidationError{Fields: map[string]string{"title": "Title is required"}}, http.StatusUnprocessableEntity, "validation_error"},
		{"auth validation", &auth.ValidationError{Fields: auth.FieldErrors{"email": auth.MsgEmailInvalid}}, http.StatusUnprocessableEntity, "validation_error"},
		{"not found", fmt.Errorf("loading: %w", docstore.ErrNotFound), http.StatusNotFound, "not_found"},
		{"unknown status", service.ErrUnknownStatus, http.StatusBadRequest, "bad_request"},
		{"unknown image type", &service.ValidationError{Fields: map[string]string{"type": "Unknown image type"}}, http.StatusUnprocessableEntity, "validation_error"},
		{"store failure", errors.New("disk I/O error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)

			h.writeServiceError(w, r, tt.err, "Failed to load blogs")

			assertStatusCode(t, w, tt.wantCode)
			resp := assertErrorResponse(t, w, tt.wantErr)
			if tt.wantCode == http.StatusInternalServerError && resp.Error.Message != "Failed to load blogs" {
				t.Errorf("message = %q, store errors must not leak", resp.Error.Message)
			}
		})
	}
}

func TestWriteServiceError_CanceledWritesNothing(t *testing.T) {
	h := &Handler{logger: testutil.TestLoggerSilent()}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)

	h.writeServiceError(w, r, context.Canceled, "Failed")

	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}
