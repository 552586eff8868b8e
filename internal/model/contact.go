// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// CollectionContacts holds contact-form submissions.
const CollectionContacts = "contacts"

// Contact is an item in the contacts collection.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactFromFields decodes a stored record.
func ContactFromFields(id string, f Fields) Contact {
	return Contact{
		ID:        id,
		Name:      str(f, "name"),
		Email:     str(f, "email"),
		Phone:     str(f, "phone"),
		Subject:   str(f, "subject"),
		Message:   str(f, "message"),
		Timestamp: timestamp(f, "timestamp"),
	}
}

// Fields encodes the contact for storage.
func (c Contact) Fields() Fields {
	f := Fields{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"subject": c.Subject,
		"message": c.Message,
	}
	if !c.Timestamp.IsZero() {
		f["timestamp"] = c.Timestamp.UnixMilli()
	}
	return f
}

// Matches reports whether the contact matches a search query.
func (c Contact) Matches(query string) bool {
	return containsFold(query, c.Name, c.Email, c.Subject, c.Message)
}

// NewestContactFirst orders submissions by timestamp, newest first.
// Submissions without a timestamp sort last.
func NewestContactFirst(a, b Contact) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
