// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit categories
const (
	AuditCategoryAuth   = "auth"
	AuditCategoryEvent  = "event"
	AuditCategoryUser   = "user"
	AuditCategorySystem = "system"
)

// AuditEntry is a single audit-trail record. Entries are written for
// authentication activity, event mutations, and WARN+ application logs,
// and are purged after the configured retention period.
type AuditEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Level     string             `bson:"level"`
	Category  string             `bson:"category"`
	Message   string             `bson:"message"`
	Username  string             `bson:"username,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty"`
	Browser   string             `bson:"browser,omitempty"`
	OS        string             `bson:"os,omitempty"`
	Country   string             `bson:"country,omitempty"`
	Metadata  map[string]any     `bson:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}
