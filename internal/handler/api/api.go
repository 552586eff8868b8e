// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API behind the admin shell.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/ocms-admin/internal/analytics"
	"github.com/olegiv/ocms-admin/internal/auth"
	"github.com/olegiv/ocms-admin/internal/cache"
	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/idle"
	"github.com/olegiv/ocms-admin/internal/imaging"
	"github.com/olegiv/ocms-admin/internal/service"
	"github.com/olegiv/ocms-admin/internal/session"
)

// MaxBodyBytes bounds JSON request bodies. Images travel inline.
const MaxBodyBytes = 8 << 20

// Deps are the collaborators of the API.
type Deps struct {
	Creds         *session.Credentials
	Authenticator *service.Authenticator
	Events        *service.EventService
	Collections   *collection.Registry
	Images        *imaging.Processor
	// Tracker may be nil when visit tracking is disabled.
	Tracker *analytics.Tracker
	// Monitors receives one idle monitor per open stream.
	Monitors *idle.Registry
	// Cache holds dashboard totals. Nil disables caching.
	Cache    cache.Cacher
	CacheTTL time.Duration

	IdleLimit    time.Duration
	IdleInterval time.Duration
	// KnownRoute accepts the paths a user may be returned to after login.
	KnownRoute func(path string) bool
	Logger     *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	creds         *session.Credentials
	authn         *service.Authenticator
	events        *service.EventService
	repos         *collection.Registry
	blogs         *service.BlogService
	gallery       *service.GalleryService
	testimonials  *service.TestimonialService
	newsletter    *service.NewsletterService
	registrations *service.RegistrationService
	listings      *service.ListingService
	tracker       *analytics.Tracker
	monitors      *idle.Registry
	stats         *cache.TypedCache[DashboardStats]
	idleLimit     time.Duration
	idleInterval  time.Duration
	knownRoute    func(string) bool
	logger        *slog.Logger
	now           func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	monitors := d.Monitors
	if monitors == nil {
		monitors = idle.NewRegistry()
	}
	limit := d.IdleLimit
	if limit <= 0 {
		limit = idle.DefaultLimit
	}
	interval := d.IdleInterval
	if interval <= 0 {
		interval = idle.DefaultInterval
	}

	h := &Handler{
		creds:         d.Creds,
		authn:         d.Authenticator,
		events:        d.Events,
		repos:         d.Collections,
		blogs:         service.NewBlogService(d.Collections.Blogs, d.Images, d.Events),
		gallery:       service.NewGalleryService(d.Collections.Gallery, d.Images, d.Events),
		testimonials:  service.NewTestimonialService(d.Collections.Testimonials, d.Events),
		newsletter:    service.NewNewsletterService(d.Collections.Subscribers, d.Events),
		registrations: service.NewRegistrationService(d.Collections.Registrations),
		listings:      service.NewListingService(d.Collections.Listings, d.Events),
		tracker:       d.Tracker,
		monitors:      monitors,
		idleLimit:     limit,
		idleInterval:  interval,
		knownRoute:    d.KnownRoute,
		logger:        logger,
		now:           time.Now,
	}
	if d.Cache != nil {
		h.stats = cache.NewTypedCache[DashboardStats](d.Cache, "dashboard:", d.CacheTTL)
	}
	return h
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// metaFor returns the pagination metadata of a page.
func metaFor[T any](p service.Page[T]) *Meta {
	return &Meta{
		Total:   int64(p.Total),
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	WriteJSON(w, statusCode, resp)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// writeServiceError maps service and store errors onto responses. Anything
// unrecognised is logged and answered with message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verr *service.ValidationError
	var aerr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.As(err, &aerr):
		WriteValidationError(w, aerr.Fields)
	case errors.Is(err, docstore.ErrNotFound):
		WriteNotFound(w, "Item not found")
	case errors.Is(err, service.ErrUnknownStatus):
		WriteBadRequest(w, "Unknown status", nil)
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		h.logger.Error(message, "error", err, "method", r.Method, "path", r.URL.Path)
		WriteInternalError(w, message)
	}
}
