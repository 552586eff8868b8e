// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/model"
)

// TestimonialService moderates testimonials.
type TestimonialService struct {
	repo   *collection.Repository[model.Testimonial]
	events *EventService
}

// NewTestimonialService creates a testimonial service.
func NewTestimonialService(repo *collection.Repository[model.Testimonial], events *EventService) *TestimonialService {
	return &TestimonialService{repo: repo, events: events}
}

// List returns a filtered page. Status "" or "all" keeps every status.
func (s *TestimonialService) List(ctx context.Context, p ListParams) (Page[model.Testimonial], error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Page[model.Testimonial]{}, err
	}
	p = p.Normalize()
	items = Filter(items, func(t model.Testimonial) bool {
		return (p.Status == "" || t.Status == p.Status) && t.Matches(p.Query)
	})
	return Paginate(items, p), nil
}

// SetStatus approves or rejects a testimonial.
func (s *TestimonialService) SetStatus(ctx context.Context, id, status string) error {
	if !model.IsTestimonialStatus(status) {
		return ErrUnknownStatus
	}
	if err := s.repo.Update(ctx, id, model.Fields{"status": status}); err != nil {
		return err
	}
	s.events.logChange(ctx, "Testimonial "+status, model.CollectionTestimonials, id)
	return nil
}

// SubscriberCounts are the newsletter totals shown above the list.
type SubscriberCounts struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Unsubscribed int `json:"unsubscribed"`
}

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	repo   *collection.Repository[model.Subscriber]
	events *EventService
}

// NewNewsletterService creates a newsletter service.
func NewNewsletterService(repo *collection.Repository[model.Subscriber], events *EventService) *NewsletterService {
	return &NewsletterService{repo: repo, events: events}
}

// List returns a filtered page and the counts over the whole collection.
func (s *NewsletterService) List(ctx context.Context, p ListParams) (Page[model.Subscriber], SubscriberCounts, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Page[model.Subscriber]{}, SubscriberCounts{}, err
	}

	counts := CountSubscribers(items)
	p = p.Normalize()
	items = Filter(items, func(sub model.Subscriber) bool {
		return (p.Status == "" || sub.Status == p.Status) && sub.Matches(p.Query)
	})
	return Paginate(items, p), counts, nil
}

// CountSubscribers tallies subscribers by status.
func CountSubscribers(items []model.Subscriber) SubscriberCounts {
	c := SubscriberCounts{Total: len(items)}
	for _, sub := range items {
		switch sub.Status {
		case model.SubscriberActive:
			c.Active++
		case model.SubscriberUnsubscribed:
			c.Unsubscribed++
		}
	}
	return c
}

// SetStatus unsubscribes or resubscribes an address.
func (s *NewsletterService) SetStatus(ctx context.Context, id, status string) error {
	if !model.IsSubscriberStatus(status) {
		return ErrUnknownStatus
	}
	if err := s.repo.Update(ctx, id, model.Fields{"status": status}); err != nil {
		return err
	}
	s.events.logChange(ctx, "Subscriber "+status, model.CollectionSubscribers, id)
	return nil
}

// RegistrationService lists event registrations.
type RegistrationService struct {
	repo *collection.Repository[model.Registration]
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(repo *collection.Repository[model.Registration]) *RegistrationService {
	return &RegistrationService{repo: repo}
}

// List returns a page of registrations matching the query.
func (s *RegistrationService) List(ctx context.Context, p ListParams) (Page[model.Registration], error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Page[model.Registration]{}, err
	}
	p = p.Normalize()
	items = Filter(items, func(r model.Registration) bool { return r.Matches(p.Query) })
	return Paginate(items, p), nil
}
