// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fields is the flat field bag stored for every collection item.
type Fields = map[string]any

// DateLayout is the calendar date format used in stored records.
const DateLayout = "2006-01-02"

// str returns the first non-empty string stored under one of keys.
// Non-string scalars are formatted; missing keys yield "".
func str(f Fields, keys ...string) string {
	for _, key := range keys {
		switch v := f[key].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		case bool:
			return strconv.FormatBool(v)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// boolean reads a flag stored as a JSON bool or a "true"/"false" string.
func boolean(f Fields, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// integer reads a whole number stored as a JSON number or numeric string.
func integer(f Fields, key string) int {
	switch v := f[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

// timestamp reads the first parseable time stored under one of keys.
// Numbers are epoch milliseconds; strings are RFC 3339 or a calendar date.
func timestamp(f Fields, keys ...string) time.Time {
	for _, key := range keys {
		switch v := f[key].(type) {
		case float64:
			if v > 0 && v < math.MaxInt64 {
				return time.UnixMilli(int64(v)).UTC()
			}
		case int64:
			if v > 0 {
				return time.UnixMilli(v).UTC()
			}
		case json.Number:
			if n, err := v.Int64(); err == nil && n > 0 {
				return time.UnixMilli(n).UTC()
			}
		case string:
			if t, ok := ParseTime(v); ok {
				return t
			}
		}
	}
	return time.Time{}
}

// ParseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// formatTime renders t for storage, leaving zero times empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// containsFold reports whether any of values contains query, ignoring case.
func containsFold(query string, values ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}
