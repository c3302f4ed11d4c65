// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatherly/gatherly/internal/model"
)

// ListCategories returns all event categories ordered ascending by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	cur, err := s.db.Collection(CollCategories).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "category_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	var categories []model.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	return categories, nil
}
