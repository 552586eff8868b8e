// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/content"
	"github.com/olegiv/ocms-admin/internal/imaging"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/util"
)

// BlogInput is the submitted new-post form.
type BlogInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// BlogService creates and publishes blog posts.
type BlogService struct {
	repo   *collection.Repository[model.Blog]
	images *imaging.Processor
	events *EventService
	now    func() time.Time
}

// NewBlogService creates a blog service. images and events may be nil.
func NewBlogService(repo *collection.Repository[model.Blog], images *imaging.Processor, events *EventService) *BlogService {
	return &BlogService{repo: repo, images: images, events: events, now: time.Now}
}

// Create stores a new unpublished post dated today and authored by Admin.
// The slug is derived from the title and made unique among existing posts.
func (s *BlogService) Create(ctx context.Context, in BlogInput) (model.Blog, error) {
	title := strings.TrimSpace(in.Title)
	if err := invalid(blogErrors(title)); err != nil {
		return model.Blog{}, err
	}

	image, err := s.normalizeImage(in.Image)
	if err != nil {
		return model.Blog{}, &ValidationError{Fields: map[string]string{"image": "Image could not be processed"}}
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return model.Blog{}, fmt.Errorf("listing blogs: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, b := range existing {
		taken[b.Slug] = true
	}

	html, err := content.RenderMarkdown(in.Content)
	if err != nil {
		return model.Blog{}, err
	}

	blog := model.Blog{
		Title:       title,
		Slug:        util.UniqueSlug(util.Slugify(title), func(s string) bool { return taken[s] }),
		Image:       image,
		Content:     in.Content,
		ContentHTML: html,
		Date:        s.now().Format(model.DateLayout),
		Author:      model.DefaultBlogAuthor,
		Published:   false,
	}

	id, err := s.repo.Add(ctx, blog)
	if err != nil {
		return model.Blog{}, fmt.Errorf("saving blog: %w", err)
	}
	blog.ID = id

	s.events.logChange(ctx, "Blog created", model.CollectionBlogs, id)
	return blog, nil
}

func blogErrors(title string) map[string]string {
	errs := map[string]string{}
	if title == "" {
		errs["title"] = "Please enter the blog title"
	}
	return errs
}

// normalizeImage re-encodes an inline image without metadata. URLs and
// empty values pass through.
func (s *BlogService) normalizeImage(image string) (string, error) {
	if s.images == nil || !imaging.IsDataURI(image) {
		return image, nil
	}
	res, err := s.images.ProcessDataURI(image)
	if err != nil {
		return "", err
	}
	return res.DataURI, nil
}

// TogglePublish flips the published flag and returns the updated post.
func (s *BlogService) TogglePublish(ctx context.Context, id string) (model.Blog, error) {
	blog, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Blog{}, err
	}

	blog.Published = !blog.Published
	if err := s.repo.Update(ctx, id, model.Fields{"published": blog.Published}); err != nil {
		return model.Blog{}, err
	}
	return blog, nil
}
