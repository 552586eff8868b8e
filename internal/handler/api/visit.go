// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ocms-admin/internal/analytics"
	"github.com/olegiv/ocms-admin/internal/handler"
	"github.com/olegiv/ocms-admin/internal/util"
)

// Visit handles POST /api/visit, sent once per shell load. Tracking runs
// in the background and its failures never reach the caller.
func (h *Handler) Visit(w http.ResponseWriter, r *http.Request) {
	if h.tracker != nil {
		h.tracker.TrackAsync(analytics.Hit{
			IP:        util.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
	}
	w.WriteHeader(http.StatusAccepted)
}

// NavResponse is the sidebar.
type NavResponse struct {
	Items  []handler.NavItem `json:"items"`
	Logout handler.NavItem   `json:"logout"`
}

// Nav handles GET /api/nav.
func (h *Handler) Nav(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, NavResponse{Items: handler.Nav, Logout: handler.LogoutItem}, nil)
}
