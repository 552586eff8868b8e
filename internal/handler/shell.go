// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the admin shell, its static assets and the
// health endpoints.
package handler

import (
	"fmt"
	"io/fs"
	"net/http"
)

// ShellPage is the file served for every shell route.
const ShellPage = "index.html"

// ShellHandler serves the embedded admin shell.
type ShellHandler struct {
	page   []byte
	assets fs.FS
}

// NewShellHandler loads the shell page from assets, which must be rooted at
// the static directory.
func NewShellHandler(assets fs.FS) (*ShellHandler, error) {
	page, err := fs.ReadFile(assets, ShellPage)
	if err != nil {
		return nil, fmt.Errorf("reading shell page: %w", err)
	}
	return &ShellHandler{page: page, assets: assets}, nil
}

// Page writes the shell. The client picks the view from the location.
func (h *ShellHandler) Page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(h.page)
}

// Assets serves the static files under /static/.
func (h *ShellHandler) Assets() http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(h.assets))
}
