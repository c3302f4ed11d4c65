package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatherly/gatherly/internal/model"
)

// memAuditStore collects entries in memory.
type memAuditStore struct {
	entries []model.AuditEntry
}

func (m *memAuditStore) CreateAuditEntry(_ context.Context, entry model.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

type staticResolver struct{ country string }

func (s staticResolver) LookupCountry(string) string { return s.country }

func TestAuditService_Log(t *testing.T) {
	store := &memAuditStore{}
	svc := NewAuditService(store, staticResolver{country: "DE"})

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	r.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	svc.LogAuth(context.Background(), model.AuditLevelInfo, "User logged in", "Alice", r, map[string]any{"k": "v"})

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries; want 1", len(store.entries))
	}

	e := store.entries[0]
	if e.Category != model.AuditCategoryAuth {
		t.Errorf("Category = %q; want auth", e.Category)
	}
	if e.Username != "alice" {
		t.Errorf("Username = %q; want normalized alice", e.Username)
	}
	if e.IPAddress != "203.0.113.7" {
		t.Errorf("IPAddress = %q; want 203.0.113.7", e.IPAddress)
	}
	if e.Browser != "Chrome" {
		t.Errorf("Browser = %q; want Chrome", e.Browser)
	}
	if e.OS == "" {
		t.Error("OS should be parsed from the user agent")
	}
	if e.Country != "DE" {
		t.Errorf("Country = %q; want DE", e.Country)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestAuditService_NilRequest(t *testing.T) {
	store := &memAuditStore{}
	svc := NewAuditService(store, nil)

	svc.Log(context.Background(), model.AuditLevelWarning, model.AuditCategorySystem, "startup warning", "", nil, nil)

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries; want 1", len(store.entries))
	}
	if store.entries[0].IPAddress != "" {
		t.Error("no request means no client metadata")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "198.51.100.4:9999", "", "198.51.100.4"},
		{"forwarded single", "10.0.0.1:80", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:80", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"no port", "198.51.100.4", "", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q; want %q", got, tt.want)
			}
		})
	}
}
