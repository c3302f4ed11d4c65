// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gatherly/gatherly/internal/model"
)

// CreateAuditEntry inserts an audit-trail record.
func (s *Store) CreateAuditEntry(ctx context.Context, entry model.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(CollAudit).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// PurgeAuditEntries deletes audit entries older than the cutoff and returns
// the number removed.
func (s *Store) PurgeAuditEntries(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.Collection(CollAudit).DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return 0, fmt.Errorf("purging audit entries: %w", err)
	}
	return res.DeletedCount, nil
}

// PurgeExpiredSessions deletes session documents whose expiry has passed and
// returns the number removed. The scs store keys expiry on the "expiry" field.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.Collection(CollSessions).DeleteMany(ctx, bson.M{
		"expiry": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.DeletedCount, nil
}
