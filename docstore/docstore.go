// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"errors"
	"time"
)

// Collection names used by the election engine.
const (
	CollectionElections   = "elections"
	CollectionVotes       = "votes"
	CollectionStudents    = "students"
	CollectionMaintenance = "maintenance"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Document is one record in a collection. Fields holds the payload as
// JSON-compatible values; backends normalize their native types on read
// (see the accessor helpers in fields.go).
type Document struct {
	ID        string
	CreatedAt time.Time
	Fields    map[string]any
}

// Filter is an equality constraint on one field.
type Filter struct {
	Field string
	Value any
}

// Equal builds an equality filter.
func Equal(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query selects documents from a collection. Without OrderByCreatedDesc the
// result order is creation order ascending. Limit <= 0 means no limit.
type Query struct {
	Filters            []Filter
	OrderByCreatedDesc bool
	Limit              int
	Offset             int
}

// Store is the document-database client the election engine runs against.
// Create with an empty id assigns a fresh one. Update merges the given
// fields into the existing document. Get and Update return ErrNotFound for
// missing documents; remote backends return ErrUnauthorized when the caller
// lacks access.
type Store interface {
	Create(collection, id string, fields map[string]any) (Document, error)
	Get(collection, id string) (Document, error)
	Update(collection, id string, fields map[string]any) (Document, error)
	Delete(collection, id string) error
	Query(collection string, q Query) ([]Document, error)
}
