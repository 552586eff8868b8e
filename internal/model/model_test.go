// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromFields_MissingFieldsDefault(t *testing.T) {
	empty := Fields{}

	b := BlogFromFields("b1", empty)
	if b.ID != "b1" || b.Title != "" || b.Published {
		t.Errorf("BlogFromFields(empty) = %+v", b)
	}

	g := GalleryImageFromFields("g1", empty)
	if g.Status != ImageStatusDraft {
		t.Errorf("gallery status = %q, want %q", g.Status, ImageStatusDraft)
	}

	tm := TestimonialFromFields("t1", empty)
	if tm.Status != TestimonialPending || tm.Rating != 0 {
		t.Errorf("TestimonialFromFields(empty) = %+v", tm)
	}

	s := SubscriberFromFields("s1", empty)
	if s.Status != SubscriberActive {
		t.Errorf("subscriber status = %q, want %q", s.Status, SubscriberActive)
	}

	c := ContactFromFields("c1", empty)
	if !c.Timestamp.IsZero() {
		t.Errorf("contact timestamp = %v, want zero", c.Timestamp)
	}
}

func TestFromFields_JSONRoundTrip(t *testing.T) {
	raw := `{"firstName":"Ada","lastName":"Lovelace","institution":"KCL","timestamp":1700000000000,"rating":"4"}`
	var f Fields
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatal(err)
	}

	r := RegistrationFromFields("r1", f)
	if r.FullName() != "Ada Lovelace" {
		t.Errorf("FullName() = %q, want %q", r.FullName(), "Ada Lovelace")
	}
	if r.School != "KCL" {
		t.Errorf("School = %q, want institution fallback %q", r.School, "KCL")
	}
	if r.RegisteredAt.UnixMilli() != 1700000000000 {
		t.Errorf("RegisteredAt = %v", r.RegisteredAt)
	}
	if r.DateString() != "2023-11-14" {
		t.Errorf("DateString() = %q, want %q", r.DateString(), "2023-11-14")
	}

	tm := TestimonialFromFields("t1", f)
	if tm.Rating != 4 {
		t.Errorf("Rating from string = %d, want 4", tm.Rating)
	}
}

func TestRegistration_FullNameFallback(t *testing.T) {
	r := RegistrationFromFields("r1", Fields{"name": "Grace Hopper"})
	if r.FullName() != "Grace Hopper" {
		t.Errorf("FullName() = %q, want %q", r.FullName(), "Grace Hopper")
	}
	if !r.Matches("hopper") {
		t.Error("Matches(hopper) = false, want true")
	}
	if r.Matches("turing") {
		t.Error("Matches(turing) = true, want false")
	}
}

func TestTestimonial_RatingClamped(t *testing.T) {
	if got := TestimonialFromFields("t", Fields{"rating": float64(9)}).Rating; got != 5 {
		t.Errorf("Rating = %d, want 5", got)
	}
	if got := TestimonialFromFields("t", Fields{"rating": float64(-2)}).Rating; got != 0 {
		t.Errorf("Rating = %d, want 0", got)
	}
}

func TestSubscriber_DateNormalized(t *testing.T) {
	s := SubscriberFromFields("s", Fields{"subscriptionDate": "2024-03-05T10:00:00Z"})
	if s.SubscriptionDate != "2024-03-05" {
		t.Errorf("SubscriptionDate = %q, want %q", s.SubscriptionDate, "2024-03-05")
	}
}

func TestContactOrdering(t *testing.T) {
	older := Contact{ID: "a", Timestamp: time.UnixMilli(1000)}
	newer := Contact{ID: "b", Timestamp: time.UnixMilli(2000)}
	missing := Contact{ID: "c"}

	if !NewestContactFirst(newer, older) {
		t.Error("newer contact should sort before older")
	}
	if !NewestContactFirst(older, missing) {
		t.Error("contact without timestamp should sort last")
	}
}

func TestLookupImageType(t *testing.T) {
	it, ok := LookupImageType("workshop")
	if !ok || it.Color != "bg-green-100 text-green-700" {
		t.Errorf("LookupImageType(workshop) = %+v, %v", it, ok)
	}
	if _, ok := LookupImageType("party"); ok {
		t.Error("LookupImageType(party) should not be found")
	}
}

func TestTimezones(t *testing.T) {
	if len(Timezones) != 25 {
		t.Fatalf("len(Timezones) = %d, want 25", len(Timezones))
	}
	if Timezones[0] != "UTC-12" || Timezones[12] != "UTC+0" || Timezones[24] != "UTC+12" {
		t.Errorf("unexpected timezones: %s %s %s", Timezones[0], Timezones[12], Timezones[24])
	}
}

func TestListingValidate(t *testing.T) {
	base := Listing{
		Title:        "Launch",
		EventType:    "Product Launch",
		Description:  "New product",
		StartDate:    "2025-05-01",
		StartTime:    "10:00",
		EndDate:      "2025-05-01",
		EndTime:      "12:00",
		Timezone:     DefaultTimezone,
		LocationType: LocationPhysical,
		Address:      "1 Main St",
		City:         "Springfield",
	}

	tests := []struct {
		name       string
		mutate     func(*Listing)
		wantFields []string
	}{
		{"valid physical", func(*Listing) {}, nil},
		{"physical without address", func(l *Listing) { l.Address, l.City = "", "" }, []string{"address", "city"}},
		{"virtual without link", func(l *Listing) { l.LocationType = LocationVirtual }, []string{"meetingLink"}},
		{"virtual with link", func(l *Listing) {
			l.LocationType = LocationVirtual
			l.MeetingLink = "https://meet.example.com/x"
		}, nil},
		{"missing core fields", func(l *Listing) {
			l.Title, l.Description, l.StartTime = "", " ", ""
		}, []string{"title", "description", "startTime"}},
		{"unknown type", func(l *Listing) { l.EventType = "Party" }, []string{"eventType"}},
		{"end before start", func(l *Listing) { l.EndDate = "2025-04-30" }, []string{"endDate"}},
		{"bad location type", func(l *Listing) { l.LocationType = "hybrid" }, []string{"locationType"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			errs := l.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() = %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("missing error for %q in %v", f, errs)
				}
			}
		})
	}
}

func TestListingNormalize(t *testing.T) {
	l := Listing{Title: "  Talk  "}
	l.Normalize()
	if l.Title != "Talk" || l.Timezone != DefaultTimezone || l.LocationType != LocationPhysical {
		t.Errorf("Normalize() = %+v", l)
	}
}

func TestVisitorFields(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	v := Visitor{Key: "k", IP: "1.2.3.0", Date: "2025-01-02", Timestamp: ts}

	got := VisitorFromFields("k", v.Fields())
	if !got.Timestamp.Equal(ts) || got.Date != "2025-01-02" || got.IP != "1.2.3.0" {
		t.Errorf("VisitorFromFields(Fields()) = %+v", got)
	}
}
