// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Validation messages shown next to the offending field.
const (
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Please enter a valid email address"
	MsgPasswordRequired        = "Password is required"
	MsgNameRequired            = "Name is required"
	MsgPasswordTooShort        = "Password must be at least 6 characters"
	MsgConfirmPasswordRequired = "Please confirm your password"
	MsgPasswordMismatch        = "Passwords do not match"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// Any reports whether at least one field failed validation.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

// LoginInput is the submitted login form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// SignupInput is the submitted signup form.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateLogin checks the login form before any lookup is made.
func ValidateLogin(in LoginInput) FieldErrors {
	errs := FieldErrors{}
	validateEmail(errs, in.Email)
	if in.Password == "" {
		errs["password"] = MsgPasswordRequired
	}
	return errs
}

// ValidateSignup checks the signup form before anything is written.
func ValidateSignup(in SignupInput) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = MsgNameRequired
	}
	validateEmail(errs, in.Email)

	switch {
	case in.Password == "":
		errs["password"] = MsgPasswordRequired
	case len(in.Password) < MinPasswordLength:
		errs["password"] = MsgPasswordTooShort
	}

	switch {
	case in.ConfirmPassword == "":
		errs["confirmPassword"] = MsgConfirmPasswordRequired
	case in.Password != in.ConfirmPassword:
		errs["confirmPassword"] = MsgPasswordMismatch
	}

	return errs
}

func validateEmail(errs FieldErrors, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = MsgEmailRequired
	case !IsValidEmail(email):
		errs["email"] = MsgEmailInvalid
	}
}
