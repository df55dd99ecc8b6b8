// Package store provides the MongoDB access layer.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	UsersCollection       = "users"
	ProductsCollection    = "products"
	AllProductsCollection = "allproducts"
	CartsCollection       = "carts"
)

// Store provides document database access methods.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and returns a Store.
// The client is shared by all requests for the life of the process.
func New(ctx context.Context, databaseURL, databaseName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(databaseName),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

// ensureIndexes creates the unique email index backing the
// one-account-per-email invariant.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database returns the underlying database handle.
// Use sparingly - prefer adding methods to Store.
func (s *Store) Database() *mongo.Database {
	return s.db
}
