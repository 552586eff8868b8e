// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/content"
	"github.com/olegiv/ocms-admin/internal/model"
)

// ListingService authors events in the event manager.
type ListingService struct {
	repo   *collection.Repository[model.Listing]
	events *EventService
}

// NewListingService creates a listing service.
func NewListingService(repo *collection.Repository[model.Listing], events *EventService) *ListingService {
	return &ListingService{repo: repo, events: events}
}

// Create validates and stores a listing, either as a draft or published.
func (s *ListingService) Create(ctx context.Context, in model.Listing, publish bool) (model.Listing, error) {
	in.ID = ""
	in.Normalize()
	if err := invalid(in.Validate()); err != nil {
		return model.Listing{}, err
	}

	in.Description = content.SanitizeHTML(in.Description)
	in.Status = model.ListingDraft
	if publish {
		in.Status = model.ListingPublished
	}

	id, err := s.repo.Add(ctx, in)
	if err != nil {
		return model.Listing{}, fmt.Errorf("saving event: %w", err)
	}
	in.ID = id

	s.events.logChange(ctx, "Event "+in.Status, model.CollectionEvents, id)
	return in, nil
}

// SetStatus publishes or unpublishes a listing.
func (s *ListingService) SetStatus(ctx context.Context, id, status string) error {
	if status != model.ListingDraft && status != model.ListingPublished {
		return ErrUnknownStatus
	}
	if err := s.repo.Update(ctx, id, model.Fields{"status": status}); err != nil {
		return err
	}
	s.events.logChange(ctx, "Event "+status, model.CollectionEvents, id)
	return nil
}
