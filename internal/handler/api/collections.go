// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-admin/internal/middleware"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/service"
	"github.com/olegiv/ocms-admin/internal/util"
)

// remover is a repository that can delete by id.
type remover interface {
	Name() string
	Remove(ctx context.Context, id string) error
}

// attributeWrites records the signed-in user and client IP on the request
// context so services can attribute their audit events.
func attributeWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithActor(r.Context(), middleware.GetUserIDPtr(r), util.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deleteItem returns a handler for DELETE /api/{feature}/{id}.
func (h *Handler) deleteItem(repo remover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.Remove(r.Context(), id); err != nil {
			h.writeServiceError(w, r, err, "Failed to delete item")
			return
		}

		_ = h.events.LogCollectionEvent(r.Context(), model.EventLevelInfo, "Item deleted",
			middleware.GetUserIDPtr(r), util.ClientIP(r),
			map[string]any{"collection": repo.Name(), "id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListBlogs handles GET /api/blogs. Posts are newest first.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Blogs.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load blogs")
		return
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// CreateBlog handles POST /api/blogs.
func (h *Handler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var in service.BlogInput
	if !decodeJSON(w, r, &in) {
		return
	}

	blog, err := h.blogs.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create blog. Please try again.")
		return
	}
	WriteCreated(w, blog)
}

// ToggleBlog handles POST /api/blogs/{id}/publish.
func (h *Handler) ToggleBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.TogglePublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to update blog")
		return
	}
	WriteSuccess(w, blog, nil)
}

// ListGallery handles GET /api/gallery with an optional status filter.
func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Gallery.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load images")
		return
	}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" && status != "all" {
		items = service.Filter(items, func(img model.GalleryImage) bool { return img.Status == status })
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// CreateGalleryImage handles POST /api/gallery.
func (h *Handler) CreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var in service.GalleryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	img, err := h.gallery.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to upload image. Please try again.")
		return
	}
	WriteCreated(w, img)
}

// PublishGalleryImage handles POST /api/gallery/{id}/publish.
func (h *Handler) PublishGalleryImage(w http.ResponseWriter, r *http.Request) {
	if err := h.gallery.Publish(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, "Failed to publish image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImageTypes handles GET /api/gallery/types.
func (h *Handler) ImageTypes(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, model.ImageTypes, nil)
}

// ListContacts handles GET /api/contacts with an optional search query.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Contacts.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load messages")
		return
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		items = service.Filter(items, func(c model.Contact) bool { return c.Matches(q) })
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// ListingRequest is the event manager form.
type ListingRequest struct {
	model.Listing
	Publish bool `json:"publish"`
}

// ListListings handles GET /api/events with an optional status filter.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	items, err := h.repos.Listings.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load events")
		return
	}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" && status != "all" {
		items = service.Filter(items, func(l model.Listing) bool { return l.Status == status })
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// CreateListing handles POST /api/events. publish selects between saving
// a draft and publishing.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req ListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	listing, err := h.listings.Create(r.Context(), req.Listing, req.Publish)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to save event. Please try again.")
		return
	}
	WriteCreated(w, listing)
}

// SetListingStatus returns a handler that moves an event to status.
func (h *Handler) SetListingStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.listings.SetStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
			h.writeServiceError(w, r, err, "Failed to update event")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListingOptions handles GET /api/events/options: the choices of the
// event manager form.
func (h *Handler) ListingOptions(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, map[string]any{
		"eventTypes": model.EventTypes,
		"timezones":  model.Timezones,
	}, nil)
}
