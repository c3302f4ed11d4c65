// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Event, Category, and audit structures.
package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Usernames are stored lowercase and
// are unique; accounts are immutable after registration.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"` // Never expose in JSON
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// NormalizeUsername lowercases and trims a submitted username. All lookups
// and writes go through the normalized form so "Alice" and "alice" are the
// same identity.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
