// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// CollectionRegistrations holds event sign-ups submitted from the website.
const CollectionRegistrations = "event_registrations"

// Registration is an item in the event_registrations collection.
type Registration struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	School       string    `json:"school"`
	Event        string    `json:"event"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// RegistrationFromFields decodes a stored record. The website has written
// both school and institution, and both timestamp and subscriptionDate.
func RegistrationFromFields(id string, f Fields) Registration {
	return Registration{
		ID:           id,
		FirstName:    str(f, "firstName"),
		LastName:     str(f, "lastName"),
		Name:         str(f, "name"),
		Email:        str(f, "email"),
		Phone:        str(f, "phone"),
		School:       str(f, "school", "institution"),
		Event:        str(f, "event"),
		Status:       str(f, "status"),
		RegisteredAt: timestamp(f, "timestamp", "subscriptionDate"),
	}
}

// Fields encodes the registration for storage.
func (r Registration) Fields() Fields {
	f := Fields{
		"firstName": r.FirstName,
		"lastName":  r.LastName,
		"name":      r.Name,
		"email":     r.Email,
		"phone":     r.Phone,
		"school":    r.School,
		"event":     r.Event,
		"status":    r.Status,
	}
	if !r.RegisteredAt.IsZero() {
		f["timestamp"] = r.RegisteredAt.UnixMilli()
	}
	return f
}

// FullName joins first and last name, falling back to the single name field.
func (r Registration) FullName() string {
	if r.FirstName != "" || r.LastName != "" {
		return strings.TrimSpace(r.FirstName + " " + r.LastName)
	}
	return r.Name
}

// DateString formats the registration date, or "" when unknown.
func (r Registration) DateString() string {
	if r.RegisteredAt.IsZero() {
		return ""
	}
	return r.RegisteredAt.Format(DateLayout)
}

// Matches reports whether the registration matches a search query.
func (r Registration) Matches(query string) bool {
	return containsFold(query, r.FullName(), r.Email, r.Phone, r.School)
}

// NewestRegistrationFirst orders registrations by time, newest first.
func NewestRegistrationFirst(a, b Registration) bool {
	if !a.RegisteredAt.Equal(b.RegisteredAt) {
		return a.RegisteredAt.After(b.RegisteredAt)
	}
	return a.ID > b.ID
}
