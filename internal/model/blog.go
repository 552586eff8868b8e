// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CollectionBlogs holds blog posts.
const CollectionBlogs = "blogs"

// DefaultBlogAuthor is stamped on posts created from the panel.
const DefaultBlogAuthor = "Admin"

// Blog is a post in the blogs collection.
type Blog struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Image       string `json:"image"`
	Content     string `json:"content"`
	ContentHTML string `json:"contentHtml"`
	Date        string `json:"date"`
	Author      string `json:"author"`
	Published   bool   `json:"published"`
}

// BlogFromFields decodes a stored record.
func BlogFromFields(id string, f Fields) Blog {
	return Blog{
		ID:          id,
		Title:       str(f, "title"),
		Slug:        str(f, "slug"),
		Image:       str(f, "image"),
		Content:     str(f, "content"),
		ContentHTML: str(f, "contentHtml"),
		Date:        str(f, "date"),
		Author:      str(f, "author"),
		Published:   boolean(f, "published"),
	}
}

// Fields encodes the post for storage.
func (b Blog) Fields() Fields {
	return Fields{
		"title":       b.Title,
		"slug":        b.Slug,
		"image":       b.Image,
		"content":     b.Content,
		"contentHtml": b.ContentHTML,
		"date":        b.Date,
		"author":      b.Author,
		"published":   b.Published,
	}
}

// NewestBlogFirst orders posts by date, newest first, then by key.
func NewestBlogFirst(a, b Blog) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.ID > b.ID
}
