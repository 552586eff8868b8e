// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package collection

import "github.com/olegiv/ocms-admin/internal/model"

// Collection definitions for every managed feature.
var (
	Blogs = Definition[model.Blog]{
		Name:   model.CollectionBlogs,
		Decode: model.BlogFromFields,
		Encode: model.Blog.Fields,
		Less:   model.NewestBlogFirst,
	}

	// Gallery lists newest uploads first by reversing key order.
	Gallery = Definition[model.GalleryImage]{
		Name:    model.CollectionGallery,
		Decode:  model.GalleryImageFromFields,
		Encode:  model.GalleryImage.Fields,
		Reverse: true,
	}

	Testimonials = Definition[model.Testimonial]{
		Name:   model.CollectionTestimonials,
		Decode: model.TestimonialFromFields,
		Encode: model.Testimonial.Fields,
		Less:   model.NewestTestimonialFirst,
	}

	Registrations = Definition[model.Registration]{
		Name:   model.CollectionRegistrations,
		Decode: model.RegistrationFromFields,
		Encode: model.Registration.Fields,
		Less:   model.NewestRegistrationFirst,
	}

	Contacts = Definition[model.Contact]{
		Name:   model.CollectionContacts,
		Decode: model.ContactFromFields,
		Encode: model.Contact.Fields,
		Less:   model.NewestContactFirst,
	}

	Subscribers = Definition[model.Subscriber]{
		Name:   model.CollectionSubscribers,
		Decode: model.SubscriberFromFields,
		Encode: model.Subscriber.Fields,
		Less:   model.NewestSubscriberFirst,
	}

	Listings = Definition[model.Listing]{
		Name:   model.CollectionEvents,
		Decode: model.ListingFromFields,
		Encode: model.Listing.Fields,
		Less:   model.UpcomingListingFirst,
	}

	Visitors = Definition[model.Visitor]{
		Name:   model.CollectionVisitors,
		Decode: model.VisitorFromFields,
		Encode: model.Visitor.Fields,
		Less: func(a, b model.Visitor) bool {
			return a.Timestamp.After(b.Timestamp)
		},
	}
)

// Registry holds one repository per collection.
type Registry struct {
	Blogs         *Repository[model.Blog]
	Gallery       *Repository[model.GalleryImage]
	Testimonials  *Repository[model.Testimonial]
	Registrations *Repository[model.Registration]
	Contacts      *Repository[model.Contact]
	Subscribers   *Repository[model.Subscriber]
	Listings      *Repository[model.Listing]
	Visitors      *Repository[model.Visitor]
}

// NewRegistry creates repositories for every collection over src.
func NewRegistry(src Source) *Registry {
	return &Registry{
		Blogs:         New(src, Blogs),
		Gallery:       New(src, Gallery),
		Testimonials:  New(src, Testimonials),
		Registrations: New(src, Registrations),
		Contacts:      New(src, Contacts),
		Subscribers:   New(src, Subscribers),
		Listings:      New(src, Listings),
		Visitors:      New(src, Visitors),
	}
}
