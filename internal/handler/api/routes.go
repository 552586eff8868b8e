// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-admin/internal/model"
)

// Guards are the middleware the API is mounted behind. Only RequireAuth
// is mandatory.
type Guards struct {
	RequireAuth func(http.Handler) http.Handler
	// TrackActivity marks writes as user activity.
	TrackActivity func(http.Handler) http.Handler
	// LoginLimiter throttles login and signup.
	LoginLimiter func(http.Handler) http.Handler
	// VisitLimiter throttles the public visit beacon.
	VisitLimiter func(http.Handler) http.Handler
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// Routes registers the API on r, which is expected to be mounted at /api.
func (h *Handler) Routes(r chi.Router, g Guards) {
	// Public
	r.With(orPass(g.LoginLimiter)).Post("/auth/login", h.Login)
	r.With(orPass(g.LoginLimiter)).Post("/auth/signup", h.Signup)
	r.Post("/auth/logout", h.Logout)
	r.Get("/session", h.Session)
	r.With(orPass(g.VisitLimiter)).Post("/visit", h.Visit)

	r.Group(func(r chi.Router) {
		r.Use(g.RequireAuth)

		r.Get("/nav", h.Nav)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/analytics", h.Analytics)

		r.Get("/blogs", h.ListBlogs)
		r.Get("/blogs/stream", Stream(h, h.repos.Blogs))

		r.Get("/gallery", h.ListGallery)
		r.Get("/gallery/types", h.ImageTypes)
		r.Get("/gallery/stream", Stream(h, h.repos.Gallery))

		r.Get("/testimonials", h.ListTestimonials)
		r.Get("/testimonials/stream", Stream(h, h.repos.Testimonials))

		r.Get("/registrations", h.ListRegistrations)
		r.Get("/registrations/export", h.ExportRegistrations)
		r.Get("/registrations/stream", Stream(h, h.repos.Registrations))

		r.Get("/contacts", h.ListContacts)
		r.Get("/contacts/stream", Stream(h, h.repos.Contacts))

		r.Get("/newsletter", h.ListSubscribers)
		r.Get("/newsletter/export", h.ExportSubscribers)
		r.Get("/newsletter/stream", Stream(h, h.repos.Subscribers))

		r.Get("/events", h.ListListings)
		r.Get("/events/options", h.ListingOptions)
		r.Get("/events/stream", Stream(h, h.repos.Listings))

		r.Get("/visitors/stream", Stream(h, h.repos.Visitors))

		// Writes count as interaction.
		r.Group(func(r chi.Router) {
			r.Use(orPass(g.TrackActivity))

			r.Post("/session/activity", h.Activity)

			r.Group(h.writes)
		})
	})
}

// writes registers the collection mutations.
func (h *Handler) writes(r chi.Router) {
	r.Use(h.invalidateStats)
	r.Use(attributeWrites)

	r.Post("/blogs", h.CreateBlog)
	r.Post("/blogs/{id}/publish", h.ToggleBlog)
	r.Delete("/blogs/{id}", h.deleteItem(h.repos.Blogs))

	r.Post("/gallery", h.CreateGalleryImage)
	r.Post("/gallery/{id}/publish", h.PublishGalleryImage)
	r.Delete("/gallery/{id}", h.deleteItem(h.repos.Gallery))

	r.Post("/testimonials/{id}/approve", h.SetTestimonialStatus(model.TestimonialApproved))
	r.Post("/testimonials/{id}/reject", h.SetTestimonialStatus(model.TestimonialRejected))
	r.Delete("/testimonials/{id}", h.deleteItem(h.repos.Testimonials))

	r.Delete("/registrations/{id}", h.deleteItem(h.repos.Registrations))

	r.Delete("/contacts/{id}", h.deleteItem(h.repos.Contacts))

	r.Post("/newsletter/{id}/unsubscribe", h.SetSubscriberStatus(model.SubscriberUnsubscribed))
	r.Post("/newsletter/{id}/resubscribe", h.SetSubscriberStatus(model.SubscriberActive))
	r.Delete("/newsletter/{id}", h.deleteItem(h.repos.Subscribers))

	r.Post("/events", h.CreateListing)
	r.Post("/events/{id}/publish", h.SetListingStatus(model.ListingPublished))
	r.Post("/events/{id}/draft", h.SetListingStatus(model.ListingDraft))
	r.Delete("/events/{id}", h.deleteItem(h.repos.Listings))
}
