// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CollectionGallery holds gallery images.
const CollectionGallery = "modelImages"

// Gallery image statuses.
const (
	ImageStatusDraft     = "draft"
	ImageStatusPublished = "published"
)

// ImageType is one of the fixed gallery categories.
type ImageType struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// ImageTypes lists the gallery categories in display order.
var ImageTypes = []ImageType{
	{Value: "conference", Label: "Conference", Color: "bg-blue-100 text-blue-700"},
	{Value: "workshop", Label: "Workshop", Color: "bg-green-100 text-green-700"},
	{Value: "seminar", Label: "Seminar", Color: "bg-yellow-100 text-yellow-700"},
	{Value: "symposium", Label: "Symposium", Color: "bg-purple-100 text-purple-700"},
	{Value: "virtual", Label: "Virtual", Color: "bg-pink-100 text-pink-700"},
	{Value: "masterclass", Label: "Masterclass", Color: "bg-indigo-100 text-indigo-700"},
}

// LookupImageType finds a category by value.
func LookupImageType(value string) (ImageType, bool) {
	for _, t := range ImageTypes {
		if t.Value == value {
			return t, true
		}
	}
	return ImageType{}, false
}

// GalleryImage is an item in the modelImages collection.
type GalleryImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UploadDate  string `json:"uploadDate"`
	Type        string `json:"type"`
	TypeColor   string `json:"typeColor"`
	Status      string `json:"status"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// GalleryImageFromFields decodes a stored record. Records without a status
// are drafts.
func GalleryImageFromFields(id string, f Fields) GalleryImage {
	status := str(f, "status")
	if status == "" {
		status = ImageStatusDraft
	}
	return GalleryImage{
		ID:          id,
		URL:         str(f, "url"),
		Thumbnail:   str(f, "thumbnail"),
		Title:       str(f, "title"),
		Description: str(f, "description"),
		UploadDate:  str(f, "uploadDate"),
		Type:        str(f, "type"),
		TypeColor:   str(f, "typeColor"),
		Status:      status,
		Width:       integer(f, "width"),
		Height:      integer(f, "height"),
	}
}

// Fields encodes the image for storage.
func (g GalleryImage) Fields() Fields {
	return Fields{
		"url":         g.URL,
		"thumbnail":   g.Thumbnail,
		"title":       g.Title,
		"description": g.Description,
		"uploadDate":  g.UploadDate,
		"type":        g.Type,
		"typeColor":   g.TypeColor,
		"status":      g.Status,
		"width":       g.Width,
		"height":      g.Height,
	}
}
