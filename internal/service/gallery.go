// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/imaging"
	"github.com/olegiv/ocms-admin/internal/model"
)

// DefaultImageType is preselected in the upload form.
const DefaultImageType = "conference"

// GalleryInput is the submitted upload form. Image is a data URI.
type GalleryInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Image       string `json:"image"`
}

// GalleryService uploads and publishes gallery images.
type GalleryService struct {
	repo   *collection.Repository[model.GalleryImage]
	images *imaging.Processor
	events *EventService
	now    func() time.Time
}

// NewGalleryService creates a gallery service.
func NewGalleryService(repo *collection.Repository[model.GalleryImage], images *imaging.Processor, events *EventService) *GalleryService {
	if images == nil {
		images = imaging.NewProcessor()
	}
	return &GalleryService{repo: repo, images: images, events: events, now: time.Now}
}

// Create processes the image, derives the type color and stores a draft.
func (s *GalleryService) Create(ctx context.Context, in GalleryInput) (model.GalleryImage, error) {
	title := strings.TrimSpace(in.Title)
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = DefaultImageType
	}

	errs := map[string]string{}
	if title == "" {
		errs["title"] = "Title is required"
	}
	if in.Image == "" {
		errs["image"] = "Please select an image"
	}
	meta, ok := model.LookupImageType(typ)
	if !ok {
		errs["type"] = "Unknown image type"
	}
	if err := invalid(errs); err != nil {
		return model.GalleryImage{}, err
	}

	res, err := s.images.ProcessDataURI(in.Image)
	if err != nil {
		msg := "Image could not be processed"
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			msg = "Image is too large"
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			msg = "Unsupported image format"
		}
		return model.GalleryImage{}, &ValidationError{Fields: map[string]string{"image": msg}}
	}

	img := model.GalleryImage{
		URL:         res.DataURI,
		Thumbnail:   res.Thumbnail,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		UploadDate:  s.now().Format(model.DateLayout),
		Type:        meta.Value,
		TypeColor:   meta.Color,
		Status:      model.ImageStatusDraft,
		Width:       res.Width,
		Height:      res.Height,
	}

	id, err := s.repo.Add(ctx, img)
	if err != nil {
		return model.GalleryImage{}, fmt.Errorf("saving image: %w", err)
	}
	img.ID = id

	s.events.logChange(ctx, "Gallery image uploaded", model.CollectionGallery, id)
	return img, nil
}

// Publish marks an image as live on the gallery.
func (s *GalleryService) Publish(ctx context.Context, id string) error {
	if err := s.repo.Update(ctx, id, model.Fields{"status": model.ImageStatusPublished}); err != nil {
		return err
	}
	s.events.logChange(ctx, "Gallery image published", model.CollectionGallery, id)
	return nil
}
