// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides MongoDB-backed persistence for users, events,
// categories, and the audit trail.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollUsers      = "users"
	CollEvents     = "events"
	CollCategories = "categories"
	CollAudit      = "audit_log"
	CollSessions   = "sessions"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate indicates a unique-index conflict (e.g. username taken).
	ErrDuplicate = errors.New("store: duplicate key")
)

// connectTimeout bounds the initial connection and ping.
const connectTimeout = 10 * time.Second

// Store wraps a MongoDB database handle and exposes typed operations on the
// application's collections.
type Store struct {
	db *mongo.Database
}

// Connect establishes a MongoDB client connection, verifies it with a ping,
// and returns a Store bound to the named database.
func Connect(ctx context.Context, uri, dbName string) (*Store, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return New(client.Database(dbName)), client, nil
}

// New creates a Store bound to the given database handle.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Database returns the underlying database handle (used by the session store).
func (s *Store) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates the indexes the application relies on. The unique
// username index closes the registration race: a duplicate insert fails
// atomically instead of depending on a prior existence check.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(CollUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating users index: %w", err)
	}

	_, err = s.db.Collection(CollEvents).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_by", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating events index: %w", err)
	}

	_, err = s.db.Collection(CollCategories).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating categories index: %w", err)
	}

	_, err = s.db.Collection(CollAudit).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating audit index: %w", err)
	}

	return nil
}

// objectID extracts a primitive.ObjectID from an InsertedID value.
func objectID(v any) primitive.ObjectID {
	if id, ok := v.(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}

// mapError translates driver errors into store sentinel errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
