// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records one visitor per address per day and summarises
// the visitors collection for the dashboard.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/util"
)

// DefaultTrackTimeout bounds a detached tracking call.
const DefaultTrackTimeout = 10 * time.Second

// Hit is one shell load.
type Hit struct {
	IP        string
	UserAgent string
}

// VisitorWriter stores visitor records under their key.
type VisitorWriter interface {
	Put(ctx context.Context, id string, v model.Visitor) error
}

// CountryLookup maps an address to an ISO country code.
type CountryLookup interface {
	Country(ip string) string
}

// Tracker writes visitor records.
type Tracker struct {
	visitors VisitorWriter
	resolver Resolver
	geo      CountryLookup
	salt     string
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithResolver sets the fallback used for requests from private networks.
func WithResolver(r Resolver) Option {
	return func(t *Tracker) { t.resolver = r }
}

// WithCountryLookup enables country resolution.
func WithCountryLookup(geo CountryLookup) Option {
	return func(t *Tracker) { t.geo = geo }
}

// WithLogger sets the logger for swallowed errors.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithTimeout sets the deadline of TrackAsync.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTracker creates a tracker. An empty salt gets a random one, which makes
// keys stable only for the lifetime of the process.
func NewTracker(visitors VisitorWriter, salt string, opts ...Option) *Tracker {
	if salt == "" {
		salt = GenerateSalt()
	}
	t := &Tracker{
		visitors: visitors,
		salt:     salt,
		logger:   slog.Default(),
		timeout:  DefaultTrackTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record resolves the visitor's public address and writes today's record.
// Writing is idempotent: a second hit on the same day overwrites the same
// key.
func (t *Tracker) Record(ctx context.Context, hit Hit) (model.Visitor, error) {
	ip, err := t.publicAddress(ctx, hit.IP)
	if err != nil {
		return model.Visitor{}, err
	}

	now := timeNow().UTC()
	date := now.Format(model.DateLayout)
	ua := parseUserAgent(hit.UserAgent)

	v := model.Visitor{
		Key:       VisitorKey(t.salt, ip, date),
		IP:        anonymizeIP(ip),
		Date:      date,
		Timestamp: now,
		Browser:   ua.Browser,
		OS:        ua.OS,
		Device:    ua.Device,
	}
	if t.geo != nil {
		v.Country = t.geo.Country(ip)
	}

	if err := t.visitors.Put(ctx, v.Key, v); err != nil {
		return model.Visitor{}, fmt.Errorf("writing visitor: %w", err)
	}
	return v, nil
}

// publicAddress returns the request address when it is public and asks the
// resolver otherwise.
func (t *Tracker) publicAddress(ctx context.Context, ip string) (string, error) {
	if util.IsPublicAddress(ip) {
		return ip, nil
	}
	if t.resolver == nil {
		return "", ErrNoAddress
	}
	return t.resolver.PublicIP(ctx)
}

// Track records a hit. Failures are logged and never returned.
func (t *Tracker) Track(ctx context.Context, hit Hit) {
	v, err := t.Record(ctx, hit)
	if err != nil {
		t.logger.Warn("visitor tracking failed", "error", err)
		return
	}
	t.logger.Debug("visitor tracked", "key", v.Key, "date", v.Date)
}

// TrackAsync records a hit in the background with its own deadline, so the
// caller's request may finish first.
func (t *Tracker) TrackAsync(hit Hit) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.Track(ctx, hit)
	}()
}
