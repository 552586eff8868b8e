// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CollectionTestimonials holds client testimonials.
const CollectionTestimonials = "testimonials"

// Testimonial moderation statuses.
const (
	TestimonialPending  = "pending"
	TestimonialApproved = "approved"
	TestimonialRejected = "rejected"
)

// Testimonial is an item in the testimonials collection.
type Testimonial struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Photo   string `json:"photo"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// TestimonialFromFields decodes a stored record. Unmoderated records are
// pending and ratings are clamped to 0..5.
func TestimonialFromFields(id string, f Fields) Testimonial {
	status := str(f, "status")
	if status == "" {
		status = TestimonialPending
	}
	rating := integer(f, "rating")
	rating = max(0, min(rating, 5))

	return Testimonial{
		ID:      id,
		Name:    str(f, "name"),
		Email:   str(f, "email"),
		Photo:   str(f, "photo"),
		Content: str(f, "content", "message"),
		Rating:  rating,
		Date:    str(f, "date"),
		Status:  status,
	}
}

// Fields encodes the testimonial for storage.
func (t Testimonial) Fields() Fields {
	return Fields{
		"name":    t.Name,
		"email":   t.Email,
		"photo":   t.Photo,
		"content": t.Content,
		"rating":  t.Rating,
		"date":    t.Date,
		"status":  t.Status,
	}
}

// Matches reports whether the testimonial matches a search query.
func (t Testimonial) Matches(query string) bool {
	return containsFold(query, t.Name, t.Email, t.Content)
}

// IsTestimonialStatus reports whether s is a known moderation status.
func IsTestimonialStatus(s string) bool {
	switch s {
	case TestimonialPending, TestimonialApproved, TestimonialRejected:
		return true
	}
	return false
}

// NewestTestimonialFirst orders testimonials by date, newest first.
func NewestTestimonialFirst(a, b Testimonial) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.ID > b.ID
}
