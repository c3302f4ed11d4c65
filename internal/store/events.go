// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gatherly/gatherly/internal/model"
)

// EventFields holds the mutable fields of an event, as accepted from the
// create and edit forms. The owner is never part of this set.
type EventFields struct {
	Title       string
	Description string
	Location    string
	Type        string
	Date        string
	StartTime   string
}

// CreateEvent inserts a new event owned by the given username.
func (s *Store) CreateEvent(ctx context.Context, fields EventFields, owner string) (model.Event, error) {
	now := time.Now().UTC()
	event := model.Event{
		Title:       fields.Title,
		Description: fields.Description,
		Location:    fields.Location,
		Type:        fields.Type,
		Date:        fields.Date,
		StartTime:   fields.StartTime,
		CreatedBy:   model.NormalizeUsername(owner),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := s.db.Collection(CollEvents).InsertOne(ctx, event)
	if err != nil {
		return model.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	event.ID = objectID(res.InsertedID)
	return event, nil
}

// GetEventByID loads an event by its hex id. Returns ErrNotFound for
// malformed or unknown ids.
func (s *Store) GetEventByID(ctx context.Context, id string) (model.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Event{}, ErrNotFound
	}

	var event model.Event
	if err := s.db.Collection(CollEvents).FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
		return model.Event{}, mapError(err)
	}
	return event, nil
}

// UpdateEvent overwrites the mutable fields of an event. The owner and
// creation timestamp are never touched.
func (s *Store) UpdateEvent(ctx context.Context, id string, fields EventFields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.db.Collection(CollEvents).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"event_title":       fields.Title,
			"event_description": fields.Description,
			"event_location":    fields.Location,
			"event_type":        fields.Type,
			"event_date":        fields.Date,
			"start_time":        fields.StartTime,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event by id, but only when it is owned by the
// given username. Returns ErrNotFound if nothing matched.
func (s *Store) DeleteEvent(ctx context.Context, id, owner string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.db.Collection(CollEvents).DeleteOne(ctx, bson.M{
		"_id":        oid,
		"created_by": model.NormalizeUsername(owner),
	})
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEventsByOwner returns all events created by the given username, in
// natural storage order.
func (s *Store) ListEventsByOwner(ctx context.Context, owner string) ([]model.Event, error) {
	cur, err := s.db.Collection(CollEvents).Find(ctx, bson.M{
		"created_by": model.NormalizeUsername(owner),
	})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	var events []model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return events, nil
}

// CountEvents returns the total number of events in the store.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(CollEvents).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}
