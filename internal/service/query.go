// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"
)

// DefaultPerPage is the page size of every feature list.
const DefaultPerPage = 10

// ListParams holds the search, filter and page of a feature list request.
type ListParams struct {
	Query   string
	Status  string
	Page    int
	PerPage int
}

// Normalize trims the query and clamps the page into range.
func (p ListParams) Normalize() ListParams {
	p.Query = strings.TrimSpace(p.Query)
	p.Status = strings.TrimSpace(p.Status)
	if p.Status == "all" {
		p.Status = ""
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// Page is one page of a filtered list.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
	Pages   int
}

// Filter keeps the items for which keep returns true. The result is never
// nil.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Paginate returns page p of items. Pages past the end are clamped to the
// last page.
func Paginate[T any](items []T, p ListParams) Page[T] {
	p = p.Normalize()

	total := len(items)
	pages := (total + p.PerPage - 1) / p.PerPage
	if pages < 1 {
		pages = 1
	}
	page := min(p.Page, pages)

	start := min((page-1)*p.PerPage, total)
	end := min(start+p.PerPage, total)

	return Page[T]{
		Items:   append(make([]T, 0, end-start), items[start:end]...),
		Total:   total,
		Page:    page,
		PerPage: p.PerPage,
		Pages:   pages,
	}
}
