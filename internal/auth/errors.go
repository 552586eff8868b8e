// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "errors"

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

// Messages shown for failed authentication.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgEmailTaken         = "An account with this email already exists"
	MsgAccountLocked      = "Too many failed attempts. Please try again later."
	MsgLoginFailed        = "Could not log in. Please try again."
	MsgSignupFailed       = "Could not create account. Please try again."
	MsgSignupSucceeded    = "Account created. You can now log in."
	MsgLoginSucceeded     = "Login successful"
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
