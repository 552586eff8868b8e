// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/store"
)

// SQLStore is a Store backed by the documents table.
type SQLStore struct {
	db       *sql.DB
	queries  *store.Queries
	hub      *Hub
	notifier Notifier
	logger   *slog.Logger

	newID func() (string, error)
	now   func() time.Time

	refreshMu sync.Mutex
	refreshes map[string]*sync.Mutex
}

// Option configures an SQLStore.
type Option func(*SQLStore)

// WithNotifier sets the notifier used to announce writes to other instances.
func WithNotifier(n Notifier) Option {
	return func(s *SQLStore) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLStore) { s.logger = l }
}

// WithClock overrides the time source used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) { s.now = now }
}

// WithIDGenerator overrides the document id generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *SQLStore) { s.newID = fn }
}

// NewSQLStore creates a store over an already migrated database.
func NewSQLStore(db *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:        db,
		queries:   store.New(db),
		hub:       NewHub(),
		notifier:  NopNotifier{},
		logger:    slog.Default(),
		newID:     newDocumentID,
		now:       time.Now,
		refreshes: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newDocumentID returns a UUIDv7 so ids sort in creation order.
func newDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Hub returns the subscriber hub.
func (s *SQLStore) Hub() *Hub {
	return s.hub
}

// Snapshot returns all documents of a collection in key order.
func (s *SQLStore) Snapshot(ctx context.Context, collection string) (Snapshot, error) {
	if err := checkCollection(collection); err != nil {
		return Snapshot{}, err
	}

	docs, err := s.queries.ListDocuments(ctx, collection)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing %s: %w", collection, err)
	}

	snap := Snapshot{Collection: collection, Records: make([]Record, 0, len(docs))}
	for _, doc := range docs {
		snap.Records = append(snap.Records, s.toRecord(doc))
	}
	return snap, nil
}

// Get returns one document.
func (s *SQLStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return Record{}, err
	}

	doc, err := s.queries.GetDocument(ctx, store.GetDocumentParams{Collection: collection, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return s.toRecord(doc), nil
}

// Count returns the number of documents in a collection.
func (s *SQLStore) Count(ctx context.Context, collection string) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	return s.queries.CountDocuments(ctx, collection)
}

// Push inserts a document under a new id.
func (s *SQLStore) Push(ctx context.Context, collection string, fields model.Fields) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}

	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	if err := s.queries.InsertDocument(ctx, store.InsertDocumentParams{
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return "", fmt.Errorf("inserting into %s: %w", collection, err)
	}

	s.changed(ctx, collection)
	return id, nil
}

// Set creates or replaces a document under a caller-chosen id.
func (s *SQLStore) Set(ctx context.Context, collection, id string, fields model.Fields) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("set %s: empty id", collection)
	}

	data, err := encodeFields(fields)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if err := s.queries.UpsertDocument(ctx, store.UpsertDocumentParams{
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}

	s.changed(ctx, collection)
	return nil
}

// Update merges patch into an existing document inside a transaction.
func (s *SQLStore) Update(ctx context.Context, collection, id string, patch model.Fields) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		doc, err := q.GetDocument(ctx, store.GetDocumentParams{Collection: collection, ID: id})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		current, err := decodeFields(doc.Data)
		if err != nil {
			return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
		}

		data, err := encodeFields(mergeFields(current, patch))
		if err != nil {
			return err
		}

		rows, err := q.UpdateDocumentData(ctx, store.UpdateDocumentDataParams{
			Data:       data,
			UpdatedAt:  s.now().UTC(),
			Collection: collection,
			ID:         id,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}

	s.changed(ctx, collection)
	return nil
}

// Remove deletes exactly one document.
func (s *SQLStore) Remove(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	rows, err := s.queries.DeleteDocument(ctx, store.DeleteDocumentParams{Collection: collection, ID: id})
	if err != nil {
		return fmt.Errorf("removing %s/%s: %w", collection, id, err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.changed(ctx, collection)
	return nil
}

// Prune deletes documents created before the cutoff and returns how many
// were removed.
func (s *SQLStore) Prune(ctx context.Context, collection string, before time.Time) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}

	rows, err := s.queries.DeleteDocumentsBefore(ctx, store.DeleteDocumentsBeforeParams{
		Collection: collection,
		Before:     before.UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("pruning %s: %w", collection, err)
	}
	if rows > 0 {
		s.changed(ctx, collection)
	}
	return rows, nil
}

// Subscribe registers a listener and delivers the current snapshot to it.
// The subscription is cancelled when ctx is done.
func (s *SQLStore) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	// Hold the refresh lock so a concurrent write cannot publish between
	// the initial load and registration.
	mu := s.refreshLock(collection)
	mu.Lock()
	snap, err := s.Snapshot(ctx, collection)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	sub := s.hub.add(collection)
	s.hub.deliver(sub, snap)
	mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.done():
		}
	}()

	return sub, nil
}

// Listen relays change notifications from other instances to local
// subscribers. It blocks until ctx is done.
func (s *SQLStore) Listen(ctx context.Context) error {
	return s.notifier.Listen(ctx, func(collection string) {
		s.refresh(ctx, collection)
	})
}

// changed republishes a collection locally and announces the write.
func (s *SQLStore) changed(ctx context.Context, collection string) {
	s.refresh(ctx, collection)

	if err := s.notifier.Notify(ctx, collection); err != nil {
		s.logger.Warn("failed to announce collection change", "collection", collection, "error", err)
	}
}

// refresh reloads a collection and publishes it to local subscribers.
// Reload and publish run under a per-collection lock so the last snapshot
// delivered always reflects the last committed write.
func (s *SQLStore) refresh(ctx context.Context, collection string) {
	mu := s.refreshLock(collection)
	mu.Lock()
	defer mu.Unlock()

	// Checked under the lock: a Subscribe that loaded its snapshot before
	// this write must be registered by now.
	if !s.hub.HasSubscribers(collection) {
		return
	}

	// Publishing must not depend on the writer's request staying alive.
	snap, err := s.Snapshot(context.WithoutCancel(ctx), collection)
	if err != nil {
		s.logger.Error("failed to reload collection", "collection", collection, "error", err)
		return
	}
	s.hub.Publish(snap)
}

func (s *SQLStore) refreshLock(collection string) *sync.Mutex {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	mu, ok := s.refreshes[collection]
	if !ok {
		mu = &sync.Mutex{}
		s.refreshes[collection] = mu
	}
	return mu
}

func (s *SQLStore) toRecord(doc store.Document) Record {
	fields, err := decodeFields(doc.Data)
	if err != nil {
		s.logger.Warn("skipping malformed document data",
			"collection", doc.Collection, "id", doc.ID, "error", err)
		fields = model.Fields{}
	}
	return Record{
		ID:        doc.ID,
		Fields:    fields,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func checkCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return ErrInvalidCollection
	}
	return nil
}

func encodeFields(fields model.Fields) (string, error) {
	if fields == nil {
		fields = model.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding fields: %w", err)
	}
	return string(data), nil
}

func decodeFields(data string) (model.Fields, error) {
	fields := model.Fields{}
	if data == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = model.Fields{}
	}
	return fields, nil
}
