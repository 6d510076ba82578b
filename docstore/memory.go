// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	seq         int64
}

type memoryDoc struct {
	doc Document
	seq int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]memoryDoc)}
}

func (s *MemoryStore) Create(collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}

	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]memoryDoc)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return Document{}, fmt.Errorf("document %s/%s already exists", collection, id)
	}

	s.seq++
	doc := Document{ID: id, CreatedAt: time.Now(), Fields: copyFields(fields)}
	coll[id] = memoryDoc{doc: doc, seq: s.seq}
	return copyDoc(doc), nil
}

func (s *MemoryStore) Get(collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	md, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return copyDoc(md.doc), nil
}

func (s *MemoryStore) Update(collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	md, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	for k, v := range copyFields(fields) {
		md.doc.Fields[k] = v
	}
	s.collections[collection][id] = md
	return copyDoc(md.doc), nil
}

func (s *MemoryStore) Delete(collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Query(collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []memoryDoc
	for _, md := range s.collections[collection] {
		if matchesFilters(md.doc.Fields, q.Filters) {
			matched = append(matched, md)
		}
	}

	// seq breaks ties between documents created within the same clock tick
	sort.Slice(matched, func(i, j int) bool {
		if q.OrderByCreatedDesc {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].seq < matched[j].seq
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]Document, len(matched))
	for i, md := range matched {
		docs[i] = copyDoc(md.doc)
	}
	return docs, nil
}

func matchesFilters(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !equalValue(fields[f.Field], f.Value) {
			return false
		}
	}
	return true
}

// equalValue compares loosely across numeric kinds so that a filter built
// with an int matches a value decoded as float64 or int64.
func equalValue(a, b any) bool {
	if a == b {
		return true
	}
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	return aok && bok && an == bn
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if ss, ok := v.([]string); ok {
			cp := make([]string, len(ss))
			copy(cp, ss)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

func copyDoc(d Document) Document {
	return Document{ID: d.ID, CreatedAt: d.CreatedAt, Fields: copyFields(d.Fields)}
}
