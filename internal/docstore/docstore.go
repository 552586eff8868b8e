// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package docstore implements the backing document store: named collections
// of flat field bags keyed by store-assigned identifiers, with live
// subscriptions that receive the full collection after every write.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
)

// ErrNotFound is returned when a document id does not exist in its collection.
var ErrNotFound = errors.New("document not found")

// ErrInvalidCollection is returned for an empty collection name.
var ErrInvalidCollection = errors.New("invalid collection name")

// Record is one document of a collection.
type Record struct {
	ID        string       `json:"id"`
	Fields    model.Fields `json:"fields"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Snapshot is the full state of a collection at one point in time.
// Records are in key order. Version increases with every publish for the
// collection within this process.
type Snapshot struct {
	Collection string   `json:"collection"`
	Version    uint64   `json:"version"`
	Records    []Record `json:"records"`
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Records)
}

// Store is the read, write and subscribe surface of the document store.
type Store interface {
	// Snapshot returns the current state of a collection. A collection
	// that was never written is an empty snapshot, not an error.
	Snapshot(ctx context.Context, collection string) (Snapshot, error)
	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)
	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Push adds a document under a new time-ordered id and returns the id.
	Push(ctx context.Context, collection string, fields model.Fields) (string, error)
	// Set creates or replaces the document stored under id.
	Set(ctx context.Context, collection, id string, fields model.Fields) error
	// Update merges patch into an existing document. A nil value removes
	// the field. Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, patch model.Fields) error
	// Remove deletes exactly one document. Returns ErrNotFound if it does
	// not exist.
	Remove(ctx context.Context, collection, id string) error
	// Subscribe registers a live listener. The current snapshot is
	// delivered first, then a new one after every committed write.
	Subscribe(ctx context.Context, collection string) (*Subscription, error)
}

// mergeFields applies a patch onto fields. Nil patch values delete keys.
func mergeFields(fields, patch model.Fields) model.Fields {
	merged := make(model.Fields, len(fields)+len(patch))
	for k, v := range fields {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
