package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/keebmart/keebmart/internal/model"
)

// Common errors for document operations.
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidID   = errors.New("invalid document id")
	ErrEmptyUpdate = errors.New("no updatable fields")
)

// InsertDocument inserts a schemaless document into the named collection
// and returns the assigned identifier as a hex string.
func (s *Store) InsertDocument(ctx context.Context, collection string, doc model.Document) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Sprintf("%v", res.InsertedID), nil
	}
	return id.Hex(), nil
}

// FindDocuments retrieves all documents matching the filter.
// A nil filter matches everything.
func (s *Store) FindDocuments(ctx context.Context, collection string, filter bson.M) ([]model.Document, error) {
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]model.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

// FindDocumentByID retrieves a single document by its hex identifier.
func (s *Store) FindDocumentByID(ctx context.Context, collection, id string) (model.Document, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc model.Document
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return doc, nil
}

// UpdateDocumentByID applies a $set patch to the document with the given
// identifier, upserting when no document matches.
func (s *Store) UpdateDocumentByID(ctx context.Context, collection, id string, fields model.Document) (*model.UpdateResult, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	// _id is immutable; never let it into the patch
	delete(fields, "_id")

	// An empty $set is a server-side error; reject it as bad input
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return &model.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}, nil
}

// DeleteDocumentByID removes a document. Returns ErrNotFound when
// nothing was deleted.
func (s *Store) DeleteDocumentByID(ctx context.Context, collection, id string) error {
	return s.DeleteDocumentMatching(ctx, collection, id, nil)
}

// DeleteDocumentMatching removes the document with the given identifier
// only when it also matches the extra filter. A document that exists but
// fails the filter is indistinguishable from an absent one: ErrNotFound.
func (s *Store) DeleteDocumentMatching(ctx context.Context, collection, id string, filter bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	match := bson.M{"_id": oid}
	for k, v := range filter {
		match[k] = v
	}

	res, err := s.db.Collection(collection).DeleteOne(ctx, match)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
