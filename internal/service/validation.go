// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "errors"

// ErrUnknownStatus rejects a status outside a feature's status set.
var ErrUnknownStatus = errors.New("unknown status")

// ValidationError rejects a feature form with per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// invalid returns a *ValidationError when fields is non-empty.
func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
