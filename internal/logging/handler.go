// Package logging provides a custom slog handler that integrates with the
// audit trail. It forwards logs at WARN level and above to the MongoDB
// audit collection for later inspection.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gatherly/gatherly/internal/model"
)

// AuditWriter persists audit entries built from log records.
type AuditWriter interface {
	CreateAuditEntry(ctx context.Context, entry model.AuditEntry) error
}

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level records to the audit trail.
type AuditHandler struct {
	inner slog.Handler
	store AuditWriter
	level slog.Level // Minimum level to forward to the audit trail
}

// NewAuditHandler creates an AuditHandler that wraps the given handler.
// Records at WARN and above are written to both the wrapped handler and
// the audit collection.
func NewAuditHandler(inner slog.Handler, store AuditWriter) *AuditHandler {
	return &AuditHandler{
		inner: inner,
		store: store,
		level: slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToAudit(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{inner: h.inner.WithAttrs(attrs), store: h.store, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{inner: h.inner.WithGroup(name), store: h.store, level: h.level}
}

// writeToAudit converts a log record into an audit entry.
// A background context ensures the entry lands even when the request
// context is already cancelled.
func (h *AuditHandler) writeToAudit(r slog.Record) {
	_ = h.store.CreateAuditEntry(context.Background(), model.AuditEntry{
		Level:     levelToAuditLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

// levelToAuditLevel converts a slog.Level to an audit level string.
func levelToAuditLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.AuditLevelError
	case level >= slog.LevelWarn:
		return model.AuditLevelWarning
	default:
		return model.AuditLevelInfo
	}
}

// extractCategory looks for a "category" attribute, falling back to
// inference from the message text.
func extractCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "session") || strings.Contains(msg, "register"):
		return model.AuditCategoryAuth
	case strings.Contains(msg, "event") || strings.Contains(msg, "categor"):
		return model.AuditCategoryEvent
	case strings.Contains(msg, "user"):
		return model.AuditCategoryUser
	default:
		return model.AuditCategorySystem
	}
}

// extractMetadata collects log attributes into a metadata map.
func extractMetadata(r slog.Record) map[string]any {
	if r.NumAttrs() == 0 {
		return nil
	}

	metadata := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true // Already extracted
		}
		metadata[a.Key] = a.Value.String()
		return true
	})

	if len(metadata) == 0 {
		return nil
	}
	return metadata
}
