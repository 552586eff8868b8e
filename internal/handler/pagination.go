// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/ocms-admin/internal/service"
)

// MaxPerPage caps the per_page query parameter.
const MaxPerPage = 100

// ParsePageParam returns the page query parameter, at least 1.
func ParsePageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam returns per_page clamped to 1..maxPerPage, or def.
func ParsePerPageParam(r *http.Request, def, maxPerPage int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		return def
	}
	return min(perPage, maxPerPage)
}

// ParseListParams reads q, status, page and per_page.
func ParseListParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	return service.ListParams{
		Query:   q.Get("q"),
		Status:  q.Get("status"),
		Page:    ParsePageParam(r),
		PerPage: ParsePerPageParam(r, service.DefaultPerPage, MaxPerPage),
	}
}
