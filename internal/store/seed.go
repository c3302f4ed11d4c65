// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gatherly/gatherly/internal/model"
)

// defaultCategories are the event types available out of the box.
var defaultCategories = []string{
	"Concert",
	"Conference",
	"Meetup",
	"Party",
	"Sports",
	"Workshop",
}

// Seed inserts the default event categories when the collection is empty.
// A no-op when doSeed is false or categories already exist.
func (s *Store) Seed(ctx context.Context, doSeed bool) error {
	if !doSeed {
		return nil
	}

	coll := s.db.Collection(CollCategories)
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	docs := make([]any, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		docs = append(docs, model.Category{Name: name})
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	slog.Info("seeded default categories", "count", len(docs))
	return nil
}
