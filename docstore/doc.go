// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package docstore provides a small document-store abstraction with three
backends: in-memory, SQL (SQLite or PostgreSQL, documents as JSON), and
MongoDB.

# The Store Interface

All persistence goes through Store:

	doc, err := store.Create("elections", "", map[string]any{"status": "active"})
	doc, err = store.Get("elections", doc.ID)
	doc, err = store.Update("elections", doc.ID, map[string]any{"status": "completed"})
	docs, err := store.Query("votes", docstore.Query{
		Filters: []docstore.Filter{docstore.Equal("election_id", doc.ID)},
		Limit:   100,
	})
	err = store.Delete("elections", doc.ID)

Create with an empty ID generates a UUID. Update merges the given fields
into the existing document. Query supports equality filters, creation-time
ordering, and limit/offset pagination.

# Errors

Backends normalize their failures to two sentinels:

  - ErrNotFound: the document does not exist
  - ErrUnauthorized: the backend denied access

Callers treat ErrUnauthorized on reads as "nothing found" so a
misconfigured deployment degrades instead of breaking every page.

# Field Access

Backends disagree on decoded types (float64 vs int64, time.Time vs RFC3339
strings). The String, Int, StringSlice, and Time helpers read fields
tolerantly:

	status := docstore.String(doc.Fields, "status")
	seat := docstore.Int(doc.Fields, "seat_number")

# Backends

	store := docstore.NewMemoryStore()                    // tests, local dev
	store := docstore.NewSQLStore(db, "sqlite")           // single document table
	store, err := docstore.ConnectMongo(uri, "classreps") // remote Mongo

The SQL backend keeps every document in one table keyed by (collection, id)
with the payload in a JSONB column. Call CreateSchema once at startup.
*/
package docstore
