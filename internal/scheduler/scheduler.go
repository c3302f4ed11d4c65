// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance against the database.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// maintenanceTimeout bounds a single maintenance run.
const maintenanceTimeout = time.Minute

// Maintainer is the storage surface the maintenance job needs.
type Maintainer interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
	PurgeAuditEntries(ctx context.Context, olderThan time.Time) (int64, error)
}

// Scheduler handles scheduled maintenance tasks.
type Scheduler struct {
	store          Maintainer
	cron           *cron.Cron
	logger         *slog.Logger
	auditRetention time.Duration
}

// New creates a new scheduler instance. auditRetention is how long audit
// entries are kept before being purged.
func New(store Maintainer, logger *slog.Logger, auditRetention time.Duration) *Scheduler {
	return &Scheduler{
		store:          store,
		cron:           cron.New(),
		logger:         logger,
		auditRetention: auditRetention,
	}
}

// Start begins the scheduler with an hourly maintenance job.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.runMaintenance)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runMaintenance purges expired sessions and aged audit entries.
// Failures are logged; the next run retries.
func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	sessions, err := s.store.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired sessions", "error", err)
	} else if sessions > 0 {
		s.logger.Info("purged expired sessions", "count", sessions)
	}

	cutoff := time.Now().UTC().Add(-s.auditRetention)
	entries, err := s.store.PurgeAuditEntries(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge audit entries", "error", err)
	} else if entries > 0 {
		s.logger.Info("purged audit entries", "count", entries, "older_than", cutoff)
	}
}
