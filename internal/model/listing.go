// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"slices"
	"strings"
)

// CollectionEvents holds events authored in the event manager.
const CollectionEvents = "events"

// Listing statuses.
const (
	ListingDraft     = "draft"
	ListingPublished = "published"
)

// Location types.
const (
	LocationPhysical = "physical"
	LocationVirtual  = "virtual"
)

// DefaultTimezone is preselected in the event manager.
const DefaultTimezone = "UTC-5"

// EventTypes lists the selectable event categories.
var EventTypes = []string{
	"Conference",
	"Workshop",
	"Webinar",
	"Seminar",
	"Networking Event",
	"Product Launch",
	"Training Session",
	"Panel Discussion",
}

// Timezones lists the selectable UTC offsets, UTC-12 through UTC+12.
var Timezones = func() []string {
	zones := make([]string, 0, 25)
	for offset := -12; offset <= 12; offset++ {
		if offset < 0 {
			zones = append(zones, fmt.Sprintf("UTC%d", offset))
		} else {
			zones = append(zones, fmt.Sprintf("UTC+%d", offset))
		}
	}
	return zones
}()

// Listing is an event authored in the event manager and stored in the
// events collection.
type Listing struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	EventType     string `json:"eventType"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	StartTime     string `json:"startTime"`
	EndDate       string `json:"endDate"`
	EndTime       string `json:"endTime"`
	Timezone      string `json:"timezone"`
	LocationType  string `json:"locationType"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	MeetingLink   string `json:"meetingLink"`
	FeaturedImage string `json:"featuredImage"`
	Status        string `json:"status"`
}

// ListingFromFields decodes a stored record.
func ListingFromFields(id string, f Fields) Listing {
	l := Listing{
		ID:            id,
		Title:         str(f, "title"),
		EventType:     str(f, "eventType"),
		Description:   str(f, "description"),
		StartDate:     str(f, "startDate"),
		StartTime:     str(f, "startTime"),
		EndDate:       str(f, "endDate"),
		EndTime:       str(f, "endTime"),
		Timezone:      str(f, "timezone"),
		LocationType:  str(f, "locationType"),
		Address:       str(f, "address"),
		City:          str(f, "city"),
		State:         str(f, "state"),
		ZipCode:       str(f, "zipCode"),
		MeetingLink:   str(f, "meetingLink"),
		FeaturedImage: str(f, "featuredImage"),
		Status:        str(f, "status"),
	}
	if l.Status == "" {
		l.Status = ListingDraft
	}
	return l
}

// Fields encodes the listing for storage.
func (l Listing) Fields() Fields {
	return Fields{
		"title":         l.Title,
		"eventType":     l.EventType,
		"description":   l.Description,
		"startDate":     l.StartDate,
		"startTime":     l.StartTime,
		"endDate":       l.EndDate,
		"endTime":       l.EndTime,
		"timezone":      l.Timezone,
		"locationType":  l.LocationType,
		"address":       l.Address,
		"city":          l.City,
		"state":         l.State,
		"zipCode":       l.ZipCode,
		"meetingLink":   l.MeetingLink,
		"featuredImage": l.FeaturedImage,
		"status":        l.Status,
	}
}

// Normalize trims text fields and fills in defaults.
func (l *Listing) Normalize() {
	for _, p := range []*string{
		&l.Title, &l.Description, &l.Address, &l.City, &l.State, &l.ZipCode, &l.MeetingLink,
	} {
		*p = strings.TrimSpace(*p)
	}
	if l.Timezone == "" {
		l.Timezone = DefaultTimezone
	}
	if l.LocationType == "" {
		l.LocationType = LocationPhysical
	}
}

// Validate returns a message per invalid field. Physical events need an
// address and city; virtual events need a meeting link.
func (l Listing) Validate() map[string]string {
	errs := map[string]string{}

	required := []struct {
		field, value, msg string
	}{
		{"title", l.Title, "Event title is required"},
		{"eventType", l.EventType, "Event type is required"},
		{"description", l.Description, "Event description is required"},
		{"startDate", l.StartDate, "Start date is required"},
		{"startTime", l.StartTime, "Start time is required"},
		{"endDate", l.EndDate, "End date is required"},
		{"endTime", l.EndTime, "End time is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.msg
		}
	}

	if l.EventType != "" && !slices.Contains(EventTypes, l.EventType) {
		errs["eventType"] = "Unknown event type"
	}
	if l.Timezone != "" && !slices.Contains(Timezones, l.Timezone) {
		errs["timezone"] = "Unknown timezone"
	}
	if _, ok := errs["startDate"]; !ok {
		if _, ok := errs["endDate"]; !ok && l.EndDate < l.StartDate {
			errs["endDate"] = "End date must not be before start date"
		}
	}

	switch l.LocationType {
	case LocationPhysical:
		if strings.TrimSpace(l.Address) == "" {
			errs["address"] = "Address is required for physical events"
		}
		if strings.TrimSpace(l.City) == "" {
			errs["city"] = "City is required for physical events"
		}
	case LocationVirtual:
		if strings.TrimSpace(l.MeetingLink) == "" {
			errs["meetingLink"] = "Meeting link is required for virtual events"
		}
	default:
		errs["locationType"] = "Location type must be physical or virtual"
	}

	return errs
}

// UpcomingListingFirst orders listings by start date, latest first.
func UpcomingListingFirst(a, b Listing) bool {
	if a.StartDate != b.StartDate {
		return a.StartDate > b.StartDate
	}
	return a.ID > b.ID
}
