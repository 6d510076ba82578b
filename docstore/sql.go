// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// sqlTimeFormat is fixed-width so lexicographic order matches time order.
const sqlTimeFormat = "2006-01-02 15:04:05.000000000"

// SQLStore keeps every document in one table with a JSON payload column,
// so the same schema serves sqlite and postgres. Driver is "postgres" or
// "sqlite" and selects the JSON-extraction dialect.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// CreateSchema creates the document table. Safe to call multiple times -
// uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Documents (one row per document, JSON payload)
CREATE TABLE IF NOT EXISTS document (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    fields JSONB NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_document_collection_created ON document(collection, created_at);
`

func (s *SQLStore) Create(collection, id string, fields map[string]any) (Document, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	payload, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("marshal fields: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO document (collection, id, created_at, fields)
		VALUES ($1, $2, $3, $4)
	`, collection, id, now.Format(sqlTimeFormat), string(payload))
	if err != nil {
		return Document{}, mapSQLErr(err)
	}

	return Document{ID: id, CreatedAt: now, Fields: decodeFields(payload)}, nil
}

func (s *SQLStore) Get(collection, id string) (Document, error) {
	var createdAt string
	var payload []byte
	err := s.db.QueryRow(`
		SELECT created_at, fields FROM document WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&createdAt, &payload)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, mapSQLErr(err)
	}
	return Document{ID: id, CreatedAt: parseSQLTime(createdAt), Fields: decodeFields(payload)}, nil
}

func (s *SQLStore) Update(collection, id string, fields map[string]any) (Document, error) {
	doc, err := s.Get(collection, id)
	if err != nil {
		return Document{}, err
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}

	payload, err := json.Marshal(doc.Fields)
	if err != nil {
		return Document{}, fmt.Errorf("marshal fields: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE document SET fields = $1 WHERE collection = $2 AND id = $3
	`, string(payload), collection, id)
	if err != nil {
		return Document{}, mapSQLErr(err)
	}
	return Document{ID: id, CreatedAt: doc.CreatedAt, Fields: decodeFields(payload)}, nil
}

func (s *SQLStore) Delete(collection, id string) error {
	res, err := s.db.Exec(`
		DELETE FROM document WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return mapSQLErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Query(collection string, q Query) ([]Document, error) {
	where := []string{"collection = $1"}
	args := []any{collection}

	// Filter fields come from this codebase, never from request input.
	for _, f := range q.Filters {
		n := len(args) + 1
		if s.driver == "postgres" {
			where = append(where, fmt.Sprintf("fields->>'%s' = $%d", f.Field, n))
			args = append(args, fmt.Sprint(f.Value))
		} else {
			where = append(where, fmt.Sprintf("json_extract(fields, '$.%s') = $%d", f.Field, n))
			args = append(args, f.Value)
		}
	}

	order := "ASC"
	if q.OrderByCreatedDesc {
		order = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT id, created_at, fields FROM document
		WHERE %s
		ORDER BY created_at %s
	`, strings.Join(where, " AND "), order)

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, createdAt string
		var payload []byte
		if err := rows.Scan(&id, &createdAt, &payload); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, Document{ID: id, CreatedAt: parseSQLTime(createdAt), Fields: decodeFields(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLErr(err)
	}
	return docs, nil
}

func decodeFields(payload []byte) map[string]any {
	fields := make(map[string]any)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return map[string]any{}
	}
	return fields
}

func parseSQLTime(s string) time.Time {
	t, err := time.Parse(sqlTimeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func mapSQLErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42501" { // insufficient_privilege
		return ErrUnauthorized
	}
	return err
}
