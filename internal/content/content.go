// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders and sanitizes user-authored text.
package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ugcPolicy allows the safe subset of HTML produced by markdown and pasted
// from rich-text editors.
var ugcPolicy = bluemonday.UGCPolicy()

// strictPolicy strips every tag.
var strictPolicy = bluemonday.StrictPolicy()

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return SanitizeHTML(buf.String()), nil
}

// SanitizeHTML removes scripts, event handlers and other unsafe markup.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

// PlainText strips all markup and collapses whitespace.
func PlainText(s string) string {
	return strings.Join(strings.Fields(strictPolicy.Sanitize(s)), " ")
}

// Excerpt returns the first n runes of the plain text, with an ellipsis
// when truncated.
func Excerpt(s string, n int) string {
	text := []rune(PlainText(s))
	if n <= 0 || len(text) <= n {
		return string(text)
	}
	return strings.TrimSpace(string(text[:n])) + "…"
}
