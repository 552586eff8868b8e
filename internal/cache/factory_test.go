// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "testing"

func TestNew_MemoryByDefault(t *testing.T) {
	c := New(DefaultConfig())
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("New() = %T, want *MemoryCache", c)
	}
}

func TestNew_UnreachableRedisFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "not-a-redis-url"

	c := New(cfg)
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Fatalf("New() = %T, want *MemoryCache fallback", c)
	}
}
