// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	got, err := RenderMarkdown("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	for _, want := range []string{"<h1", "Title</h1>", "<strong>bold</strong>"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMarkdown() = %q, missing %q", got, want)
		}
	}
}

func TestRenderMarkdown_StripsScripts(t *testing.T) {
	got, err := RenderMarkdown("hello <script>alert(1)</script> [x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(got, "<script") {
		t.Errorf("script survived: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript link survived: %q", got)
	}
}

func TestSanitizeHTML(t *testing.T) {
	got := SanitizeHTML(`<p onclick="x()">Hi <a href="https://example.com">there</a></p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("event handler survived: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("safe link removed: %q", got)
	}
}

func TestPlainTextAndExcerpt(t *testing.T) {
	if got := PlainText("<p>Hello   <b>world</b></p>"); got != "Hello world" {
		t.Errorf("PlainText() = %q", got)
	}

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"one two three", 7, "one two…"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.in, tt.n); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
