// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: event log and
// visitor retention and GeoIP database reloads.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
)

// Default schedules.
const (
	ScheduleEventRetention   = "@daily"
	ScheduleVisitorRetention = "30 3 * * *"
	ScheduleGeoIPReload      = "@weekly"
)

// EventPruner deletes audit events older than a duration.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) error
}

// DocumentPruner deletes documents of a collection created before a cutoff.
type DocumentPruner interface {
	Prune(ctx context.Context, collection string, before time.Time) (int64, error)
}

// Reloader reopens an on-disk database if it changed.
type Reloader interface {
	Reload() error
}

// Config selects which maintenance jobs are registered. Zero retentions
// and nil dependencies disable the corresponding job.
type Config struct {
	Events           EventPruner
	EventRetention   time.Duration
	Documents        DocumentPruner
	VisitorRetention time.Duration
	GeoIP            Reloader
}

// Scheduler handles the admin's background maintenance.
type Scheduler struct {
	*Registry
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a scheduler and registers the jobs enabled by cfg.
func New(cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		Registry: NewRegistry(logger, 5*time.Minute),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}

	if cfg.Events != nil && cfg.EventRetention > 0 {
		if err := s.Register("event_retention", "Delete audit events past retention",
			ScheduleEventRetention, s.pruneEvents); err != nil {
			return nil, err
		}
	}
	if cfg.Documents != nil && cfg.VisitorRetention > 0 {
		if err := s.Register("visitor_retention", "Delete visitor records past retention",
			ScheduleVisitorRetention, s.pruneVisitors); err != nil {
			return nil, err
		}
	}
	if cfg.GeoIP != nil {
		if err := s.Register("geoip_reload", "Reload the GeoIP country database",
			ScheduleGeoIPReload, s.reloadGeoIP); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) pruneEvents(ctx context.Context) error {
	return s.cfg.Events.DeleteOldEvents(ctx, s.cfg.EventRetention)
}

func (s *Scheduler) pruneVisitors(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.cfg.VisitorRetention)
	n, err := s.cfg.Documents.Prune(ctx, model.CollectionVisitors, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned visitor records", "count", n, "before", cutoff.Format(time.DateOnly))
	}
	return nil
}

func (s *Scheduler) reloadGeoIP(context.Context) error {
	return s.cfg.GeoIP.Reload()
}
