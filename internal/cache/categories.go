// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gatherly/gatherly/internal/model"
)

// categoriesKey is the cache key for the full category list.
const categoriesKey = "categories:all"

// CategoryLister is the store-side source of truth for categories.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Categories is a read-through cache for the category reference data. A
// cache failure is never fatal: the store remains the source of truth.
type Categories struct {
	cache Cache
	store CategoryLister
	ttl   time.Duration
}

// NewCategories creates a category cache over the given backend and store.
func NewCategories(cache Cache, store CategoryLister, ttl time.Duration) *Categories {
	return &Categories{cache: cache, store: store, ttl: ttl}
}

// List returns all categories ordered ascending by name, from cache when
// possible.
func (c *Categories) List(ctx context.Context) ([]model.Category, error) {
	if data, err := c.cache.Get(ctx, categoriesKey); err == nil {
		var categories []model.Category
		if err := json.Unmarshal(data, &categories); err == nil {
			return categories, nil
		}
		// Corrupt entry; fall through to the store and rewrite it.
		_ = c.cache.Delete(ctx, categoriesKey)
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("category cache read failed", "error", err)
	}

	categories, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(categories); err == nil {
		if err := c.cache.Set(ctx, categoriesKey, data, c.ttl); err != nil {
			slog.Warn("category cache write failed", "error", err)
		}
	}

	return categories, nil
}

// Invalidate drops the cached category list.
func (c *Categories) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, categoriesKey)
}
