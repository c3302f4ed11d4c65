// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a user-created record describing an activity, attributed to its
// creator via CreatedBy (a lowercase username). Edits overwrite every field
// except the id, owner, and creation timestamp.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"event_title" json:"event_title"`
	Description string             `bson:"event_description" json:"event_description"`
	Location    string             `bson:"event_location" json:"event_location"`
	Type        string             `bson:"event_type" json:"event_type"`
	Date        string             `bson:"event_date" json:"event_date"` // YYYY-MM-DD
	StartTime   string             `bson:"start_time" json:"start_time"` // HH:MM
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether the event belongs to the given (normalized) username.
func (e *Event) OwnedBy(username string) bool {
	return e.CreatedBy == NormalizeUsername(username)
}

// Category is read-only reference data populating the event-type selector.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"category_name" json:"category_name"`
}
