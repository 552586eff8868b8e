// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const documentColumns = `collection, id, data, created_at, updated_at`

func scanDocument(row rowScanner) (Document, error) {
	var i Document
	err := row.Scan(
		&i.Collection,
		&i.ID,
		&i.Data,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertDocument = `-- name: InsertDocument :exec
INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

type InsertDocumentParams struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Data       string    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (q *Queries) InsertDocument(ctx context.Context, arg InsertDocumentParams) error {
	_, err := q.db.ExecContext(ctx, insertDocument,
		arg.Collection,
		arg.ID,
		arg.Data,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const upsertDocument = `-- name: UpsertDocument :exec
INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET
    data = excluded.data,
    updated_at = excluded.updated_at`

type UpsertDocumentParams = InsertDocumentParams

func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error {
	_, err := q.db.ExecContext(ctx, upsertDocument,
		arg.Collection,
		arg.ID,
		arg.Data,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateDocumentData = `-- name: UpdateDocumentData :execrows
UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`

type UpdateDocumentDataParams struct {
	Data       string    `json:"data"`
	UpdatedAt  time.Time `json:"updated_at"`
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
}

func (q *Queries) UpdateDocumentData(ctx context.Context, arg UpdateDocumentDataParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateDocumentData, arg.Data, arg.UpdatedAt, arg.Collection, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getDocument = `-- name: GetDocument :one
SELECT ` + documentColumns + ` FROM documents WHERE collection = ? AND id = ?`

type GetDocumentParams struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

func (q *Queries) GetDocument(ctx context.Context, arg GetDocumentParams) (Document, error) {
	return scanDocument(q.db.QueryRowContext(ctx, getDocument, arg.Collection, arg.ID))
}

const listDocuments = `-- name: ListDocuments :many
SELECT ` + documentColumns + ` FROM documents WHERE collection = ? ORDER BY id`

func (q *Queries) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := q.db.QueryContext(ctx, listDocuments, collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Document
	for rows.Next() {
		i, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteDocument = `-- name: DeleteDocument :execrows
DELETE FROM documents WHERE collection = ? AND id = ?`

type DeleteDocumentParams = GetDocumentParams

func (q *Queries) DeleteDocument(ctx context.Context, arg DeleteDocumentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDocument, arg.Collection, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countDocuments = `-- name: CountDocuments :one
SELECT COUNT(*) FROM documents WHERE collection = ?`

func (q *Queries) CountDocuments(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDocuments, collection).Scan(&count)
	return count, err
}

const deleteDocumentsBefore = `-- name: DeleteDocumentsBefore :execrows
DELETE FROM documents WHERE collection = ? AND created_at < ?`

type DeleteDocumentsBeforeParams struct {
	Collection string    `json:"collection"`
	Before     time.Time `json:"before"`
}

func (q *Queries) DeleteDocumentsBefore(ctx context.Context, arg DeleteDocumentsBeforeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDocumentsBefore, arg.Collection, arg.Before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
