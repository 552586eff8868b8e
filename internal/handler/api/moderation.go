// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-admin/internal/export"
	"github.com/olegiv/ocms-admin/internal/handler"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/service"
)

// NewsletterMeta adds the subscriber counts to the page metadata.
type NewsletterMeta struct {
	Meta
	Counts service.SubscriberCounts `json:"counts"`
}

// ListTestimonials handles GET /api/testimonials?q=&status=&page=.
func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	page, err := h.testimonials.List(r.Context(), handler.ParseListParams(r))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load testimonials")
		return
	}
	WriteSuccess(w, page.Items, metaFor(page))
}

// SetTestimonialStatus returns a handler that approves or rejects.
func (h *Handler) SetTestimonialStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.testimonials.SetStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
			h.writeServiceError(w, r, err, "Failed to update testimonial")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListRegistrations handles GET /api/registrations?q=&page=.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	page, err := h.registrations.List(r.Context(), handler.ParseListParams(r))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load registrations")
		return
	}
	WriteSuccess(w, page.Items, metaFor(page))
}

// ExportRegistrations handles GET /api/registrations/export?format=csv|pdf.
// Every registration is exported regardless of the current page.
func (h *Handler) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Registrations.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to export registrations")
		return
	}
	h.writeExport(w, r, export.Registrations(items))
}

// ListSubscribers handles GET /api/newsletter?q=&status=&page=.
func (h *Handler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	page, counts, err := h.newsletter.List(r.Context(), handler.ParseListParams(r))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load subscribers")
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Data []model.Subscriber `json:"data"`
		Meta NewsletterMeta     `json:"meta"`
	}{
		Data: page.Items,
		Meta: NewsletterMeta{Meta: *metaFor(page), Counts: counts},
	})
}

// SetSubscriberStatus returns a handler that unsubscribes or resubscribes.
func (h *Handler) SetSubscriberStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.newsletter.SetStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
			h.writeServiceError(w, r, err, "Failed to update subscriber")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ExportSubscribers handles GET /api/newsletter/export?format=csv|pdf.
func (h *Handler) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Subscribers.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to export subscribers")
		return
	}
	h.writeExport(w, r, export.Subscribers(items))
}

// writeExport renders t in the requested format. Nothing is sent until
// rendering succeeded.
func (h *Handler) writeExport(w http.ResponseWriter, r *http.Request, t export.Table) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatPDF {
		WriteBadRequest(w, "Unsupported export format", map[string]string{"format": "Use csv or pdf"})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, t, format); err != nil {
		h.logger.Error("export failed", "error", err, "file", t.Filename, "format", format)
		WriteInternalError(w, "Failed to build export")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.FileName(format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
