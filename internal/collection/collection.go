// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package collection provides a typed repository over one document store
// collection. Every feature view reads and writes its records through a
// Repository parameterised by the feature's record type.
package collection

import (
	"context"
	"slices"
	"sync"

	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/model"
)

// Source is the subset of the document store a repository needs.
type Source interface {
	Snapshot(ctx context.Context, collection string) (docstore.Snapshot, error)
	Get(ctx context.Context, collection, id string) (docstore.Record, error)
	Count(ctx context.Context, collection string) (int64, error)
	Push(ctx context.Context, collection string, fields model.Fields) (string, error)
	Set(ctx context.Context, collection, id string, fields model.Fields) error
	Update(ctx context.Context, collection, id string, patch model.Fields) error
	Remove(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string) (*docstore.Subscription, error)
}

// Definition describes how a collection maps to a record type.
type Definition[T any] struct {
	// Name is the store collection name.
	Name string
	// Decode builds a record from a stored key and its fields.
	Decode func(id string, fields model.Fields) T
	// Encode returns the fields to store for a record.
	Encode func(T) model.Fields
	// Less orders records in lists. Nil keeps store key order.
	Less func(a, b T) bool
	// Reverse flips key order before Less is applied.
	Reverse bool
}

// Repository reads and writes records of one collection.
type Repository[T any] struct {
	src Source
	def Definition[T]
}

// New creates a repository.
func New[T any](src Source, def Definition[T]) *Repository[T] {
	return &Repository[T]{src: src, def: def}
}

// Name returns the collection name.
func (r *Repository[T]) Name() string {
	return r.def.Name
}

// Transform converts a snapshot into an ordered record list. An empty
// snapshot yields an empty, non-nil list.
func (r *Repository[T]) Transform(snap docstore.Snapshot) []T {
	items := make([]T, 0, len(snap.Records))
	for _, rec := range snap.Records {
		items = append(items, r.def.Decode(rec.ID, rec.Fields))
	}
	if r.def.Reverse {
		slices.Reverse(items)
	}
	if r.def.Less != nil {
		slices.SortStableFunc(items, func(a, b T) int {
			switch {
			case r.def.Less(a, b):
				return -1
			case r.def.Less(b, a):
				return 1
			default:
				return 0
			}
		})
	}
	return items
}

// List returns all records in display order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	snap, err := r.src.Snapshot(ctx, r.def.Name)
	if err != nil {
		return nil, err
	}
	return r.Transform(snap), nil
}

// Get returns one record or docstore.ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := r.src.Get(ctx, r.def.Name, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.def.Decode(rec.ID, rec.Fields), nil
}

// Count returns the number of records.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.src.Count(ctx, r.def.Name)
}

// Add stores a new record and returns its key.
func (r *Repository[T]) Add(ctx context.Context, item T) (string, error) {
	return r.src.Push(ctx, r.def.Name, r.def.Encode(item))
}

// Put creates or replaces the record stored under id.
func (r *Repository[T]) Put(ctx context.Context, id string, item T) error {
	return r.src.Set(ctx, r.def.Name, id, r.def.Encode(item))
}

// Update merges patch into the record stored under id.
func (r *Repository[T]) Update(ctx context.Context, id string, patch model.Fields) error {
	return r.src.Update(ctx, r.def.Name, id, patch)
}

// Remove deletes the record stored under id.
func (r *Repository[T]) Remove(ctx context.Context, id string) error {
	return r.src.Remove(ctx, r.def.Name, id)
}

// Subscribe calls onUpdate with the current list and again after every
// change. The returned function unsubscribes; once it returns, onUpdate is
// not called again. Calling it more than once is safe, but not from inside
// onUpdate.
func (r *Repository[T]) Subscribe(ctx context.Context, onUpdate func([]T)) (func(), error) {
	sub, err := r.src.Subscribe(ctx, r.def.Name)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		stopped bool
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for snap := range sub.C() {
			items := r.Transform(snap)

			mu.Lock()
			if !stopped {
				onUpdate(items)
			}
			mu.Unlock()
		}
	}()

	return func() {
		mu.Lock()
		stopped = true
		mu.Unlock()

		sub.Cancel()
		<-done
	}, nil
}

// Watch is Subscribe delivered on a channel. A reader that falls behind
// only sees the newest list. The channel closes when ctx is done or the
// returned cancel function is called.
func (r *Repository[T]) Watch(ctx context.Context) (<-chan []T, func(), error) {
	out := make(chan []T, 1)

	// onUpdate is the only sender, so the slot is free after the drain.
	unsubscribe, err := r.Subscribe(ctx, func(items []T) {
		select {
		case out <- items:
		default:
			select {
			case <-out:
			default:
			}
			out <- items
		}
	})
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	stopped := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			unsubscribe()
			close(out)
			close(stopped)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stopped:
		}
	}()

	return out, cancel, nil
}
