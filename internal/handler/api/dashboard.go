// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/olegiv/ocms-admin/internal/analytics"
)

const dashboardStatsKey = "totals"

// DashboardStats are the totals on the dashboard cards.
type DashboardStats struct {
	Visitors      int64 `json:"visitors"`
	Blogs         int64 `json:"blogs"`
	Testimonials  int64 `json:"testimonials"`
	Subscribers   int64 `json:"subscribers"`
	Registrations int64 `json:"registrations"`
	Contacts      int64 `json:"contacts"`
	Events        int64 `json:"events"`
}

// Dashboard handles GET /api/dashboard. Totals are cached for the cache
// TTL.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		stats *DashboardStats
		err   error
	)
	if h.stats != nil {
		stats, err = h.stats.GetOrSet(ctx, dashboardStatsKey, func() (*DashboardStats, error) {
			return h.countAll(ctx)
		})
	} else {
		stats, err = h.countAll(ctx)
	}
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load dashboard")
		return
	}
	WriteSuccess(w, stats, nil)
}

// invalidateStats drops the cached totals after a write so the dashboard
// does not lag behind the collections.
func (h *Handler) invalidateStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if h.stats != nil {
			if err := h.stats.Invalidate(context.WithoutCancel(r.Context())); err != nil {
				h.logger.Warn("failed to invalidate dashboard totals", "error", err)
			}
		}
	})
}

func (h *Handler) countAll(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	counts := []struct {
		name string
		dst  *int64
		fn   func(context.Context) (int64, error)
	}{
		{"visitors", &s.Visitors, h.repos.Visitors.Count},
		{"blogs", &s.Blogs, h.repos.Blogs.Count},
		{"testimonials", &s.Testimonials, h.repos.Testimonials.Count},
		{"subscribers", &s.Subscribers, h.repos.Subscribers.Count},
		{"registrations", &s.Registrations, h.repos.Registrations.Count},
		{"contacts", &s.Contacts, h.repos.Contacts.Count},
		{"events", &s.Events, h.repos.Listings.Count},
	}
	for _, c := range counts {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.name, err)
		}
		*c.dst = n
	}
	return &s, nil
}

// Analytics handles GET /api/analytics?range=7d|30d|all. The default range
// is 30 days.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = analytics.Range30Days
	}
	if !analytics.ValidRange(rng) {
		WriteBadRequest(w, "Unknown range", map[string]string{"range": "Use 7d, 30d or all"})
		return
	}

	visitors, err := h.repos.Visitors.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load analytics")
		return
	}
	WriteSuccess(w, analytics.Summarize(visitors, rng, h.now()), nil)
}
