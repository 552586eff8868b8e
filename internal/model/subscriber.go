// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CollectionSubscribers holds newsletter sign-ups.
const CollectionSubscribers = "sub-form"

// Newsletter subscription statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// Subscriber is an item in the newsletter collection.
type Subscriber struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	SubscriptionDate string `json:"subscriptionDate"`
	Status           string `json:"status"`
	Source           string `json:"source"`
}

// SubscriberFromFields decodes a stored record. Records without a status are
// active subscriptions.
func SubscriberFromFields(id string, f Fields) Subscriber {
	status := str(f, "status")
	if status == "" {
		status = SubscriberActive
	}
	date := str(f, "subscriptionDate", "date")
	if t, ok := ParseTime(date); ok {
		date = t.Format(DateLayout)
	} else if t := timestamp(f, "timestamp"); !t.IsZero() {
		date = t.Format(DateLayout)
	}

	return Subscriber{
		ID:               id,
		Name:             str(f, "name"),
		Email:            str(f, "email"),
		SubscriptionDate: date,
		Status:           status,
		Source:           str(f, "source"),
	}
}

// Fields encodes the subscriber for storage.
func (s Subscriber) Fields() Fields {
	return Fields{
		"name":             s.Name,
		"email":            s.Email,
		"subscriptionDate": s.SubscriptionDate,
		"status":           s.Status,
		"source":           s.Source,
	}
}

// Matches reports whether the subscriber matches a search query.
func (s Subscriber) Matches(query string) bool {
	return containsFold(query, s.Name, s.Email)
}

// IsSubscriberStatus reports whether s is a known subscription status.
func IsSubscriberStatus(s string) bool {
	return s == SubscriberActive || s == SubscriberUnsubscribed
}

// NewestSubscriberFirst orders subscribers by subscription date, newest first.
func NewestSubscriberFirst(a, b Subscriber) bool {
	if a.SubscriptionDate != b.SubscriptionDate {
		return a.SubscriptionDate > b.SubscriptionDate
	}
	return a.ID > b.ID
}
