// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoOpTimeout = 10 * time.Second

// MongoStore backs the Store contract with a remote MongoDB database.
// Documents are stored with their payload fields at the top level next to
// _id and created_at.
type MongoStore struct {
	db *mongo.Database
}

// ConnectMongo dials the given URI, verifies the connection, and returns a
// store over the named database.
func ConnectMongo(uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{db: client.Database(dbName)}, nil
}

func (s *MongoStore) Create(collection, id string, fields map[string]any) (Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	record := bson.M{"_id": id, "created_at": now}
	for k, v := range fields {
		record[k] = v
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, record); err != nil {
		return Document{}, mapMongoErr(err)
	}
	return Document{ID: id, CreatedAt: now, Fields: normalizeFields(record)}, nil
}

func (s *MongoStore) Get(collection, id string) (Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	var record bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		return Document{}, mapMongoErr(err)
	}
	return docFromRecord(record), nil
}

func (s *MongoStore) Update(collection, id string, fields map[string]any) (Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	var record bson.M
	err := s.db.Collection(collection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if err != nil {
		return Document{}, mapMongoErr(err)
	}
	return docFromRecord(record), nil
}

func (s *MongoStore) Delete(collection, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Query(collection string, q Query) ([]Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}

	order := 1
	if q.OrderByCreatedDesc {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var record bson.M
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, docFromRecord(record))
	}
	if err := cursor.Err(); err != nil {
		return nil, mapMongoErr(err)
	}
	return docs, nil
}

func docFromRecord(record bson.M) Document {
	doc := Document{Fields: normalizeFields(record)}
	if id, ok := record["_id"].(string); ok {
		doc.ID = id
	}
	doc.CreatedAt = Time(doc.Fields, "created_at")
	delete(doc.Fields, "_id")
	delete(doc.Fields, "created_at")
	return doc
}

// normalizeFields converts bson-specific types to the canonical field types
// the accessor helpers expect.
func normalizeFields(record bson.M) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		switch t := v.(type) {
		case primitive.DateTime:
			out[k] = t.Time()
		case primitive.A:
			out[k] = []any(t)
		default:
			out[k] = v
		}
	}
	return out
}

func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 13 { // Unauthorized
		return ErrUnauthorized
	}
	return err
}
