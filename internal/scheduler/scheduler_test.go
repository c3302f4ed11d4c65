// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeMaintainer struct {
	mu           sync.Mutex
	sessionCalls int
	auditCalls   int
	auditCutoff  time.Time
	sessionErr   error
	auditErr     error
}

func (f *fakeMaintainer) PurgeExpiredSessions(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	if f.sessionErr != nil {
		return 0, f.sessionErr
	}
	return 3, nil
}

func (f *fakeMaintainer) PurgeAuditEntries(_ context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auditCalls++
	f.auditCutoff = olderThan
	if f.auditErr != nil {
		return 0, f.auditErr
	}
	return 7, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunMaintenancePurgesBoth(t *testing.T) {
	store := &fakeMaintainer{}
	s := New(store, discardLogger(), 90*24*time.Hour)

	s.runMaintenance()

	if store.sessionCalls != 1 {
		t.Errorf("sessionCalls = %d, want 1", store.sessionCalls)
	}
	if store.auditCalls != 1 {
		t.Errorf("auditCalls = %d, want 1", store.auditCalls)
	}

	wantCutoff := time.Now().UTC().Add(-90 * 24 * time.Hour)
	if diff := store.auditCutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Errorf("audit cutoff = %v, want around %v", store.auditCutoff, wantCutoff)
	}
}

func TestRunMaintenanceSessionErrorDoesNotBlockAudit(t *testing.T) {
	store := &fakeMaintainer{sessionErr: errors.New("mongo down")}
	s := New(store, discardLogger(), time.Hour)

	s.runMaintenance()

	if store.auditCalls != 1 {
		t.Errorf("auditCalls = %d, want 1 despite session purge failure", store.auditCalls)
	}
}

func TestStartStop(t *testing.T) {
	store := &fakeMaintainer{}
	s := New(store, discardLogger(), time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
	s.Stop()
}
