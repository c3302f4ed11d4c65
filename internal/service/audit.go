// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic above the store layer,
// currently the audit trail for authentication and event activity.
package service

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/gatherly/gatherly/internal/model"
)

// AuditWriter persists audit entries.
type AuditWriter interface {
	CreateAuditEntry(ctx context.Context, entry model.AuditEntry) error
}

// CountryResolver resolves an IP address to an ISO country code. May be nil.
type CountryResolver interface {
	LookupCountry(ip string) string
}

// AuditService records audit-trail entries enriched with client metadata
// (browser, OS, and optionally country).
type AuditService struct {
	store AuditWriter
	geo   CountryResolver
}

// NewAuditService creates a new AuditService. geo may be nil to skip
// country resolution.
func NewAuditService(store AuditWriter, geo CountryResolver) *AuditService {
	return &AuditService{store: store, geo: geo}
}

// Log writes an audit entry. Failures are logged but never surfaced to the
// caller: the audit trail must not break user flows.
func (s *AuditService) Log(ctx context.Context, level, category, message, username string, r *http.Request, metadata map[string]any) {
	entry := model.AuditEntry{
		Level:     level,
		Category:  category,
		Message:   message,
		Username:  model.NormalizeUsername(username),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if r != nil {
		entry.IPAddress = ClientIP(r)
		entry.UserAgent = r.UserAgent()

		ua := useragent.Parse(entry.UserAgent)
		entry.Browser = ua.Name
		entry.OS = ua.OS

		if s.geo != nil {
			entry.Country = s.geo.LookupCountry(entry.IPAddress)
		}
	}

	if err := s.store.CreateAuditEntry(ctx, entry); err != nil {
		slog.Error("failed to write audit entry", "error", err, "category", category)
	}
}

// LogAuth records an authentication-related entry.
func (s *AuditService) LogAuth(ctx context.Context, level, message, username string, r *http.Request, metadata map[string]any) {
	s.Log(ctx, level, model.AuditCategoryAuth, message, username, r, metadata)
}

// LogEvent records an event-mutation entry.
func (s *AuditService) LogEvent(ctx context.Context, level, message, username string, r *http.Request, metadata map[string]any) {
	s.Log(ctx, level, model.AuditCategoryEvent, message, username, r, metadata)
}

// ClientIP extracts the client IP from a request, preferring the
// X-Forwarded-For chain when a proxy set it.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First address in the chain is the original client.
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
