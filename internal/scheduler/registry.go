// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	name            string
	description     string
	defaultSchedule string
	schedule        string
	entryID         cron.EntryID
	run             func()
	fn              JobFunc
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"defaultSchedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"isOverridden"`
	LastRun         time.Time `json:"lastRun"`
	NextRun         time.Time `json:"nextRun"`
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether expr is a valid five-field cron
// expression or descriptor such as "@daily".
func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Registry owns a cron instance and the jobs added to it.
type Registry struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// NewRegistry creates an empty registry. Each run gets its own context
// bounded by timeout.
func NewRegistry(logger *slog.Logger, timeout time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Registry{
		cron:    cron.New(cron.WithParser(parser)),
		logger:  logger,
		timeout: timeout,
		jobs:    make(map[string]*registeredJob),
	}
}

// Register adds a job under a unique name.
func (r *Registry) Register(name, description, schedule string, fn JobFunc) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}

	job := &registeredJob{
		name:            name,
		description:     description,
		defaultSchedule: schedule,
		schedule:        schedule,
		fn:              fn,
	}
	job.run = func() { _ = r.execute(job) }

	id, err := r.cron.AddFunc(schedule, job.run)
	if err != nil {
		return fmt.Errorf("adding job %s: %w", name, err)
	}
	job.entryID = id
	r.jobs[name] = job

	r.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

func (r *Registry) execute(job *registeredJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := job.fn(ctx); err != nil {
		r.logger.Error("scheduled job failed", "name", job.name, "error", err)
		return err
	}
	r.logger.Debug("scheduled job finished", "name", job.name, "duration", time.Since(start))
	return nil
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		entry := r.cron.Entry(job.entryID)
		result = append(result, JobInfo{
			Name:            job.name,
			Description:     job.description,
			DefaultSchedule: job.defaultSchedule,
			Schedule:        job.schedule,
			IsOverridden:    job.schedule != job.defaultSchedule,
			LastRun:         entry.Prev,
			NextRun:         entry.Next,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// TriggerNow runs a job synchronously and returns its error.
func (r *Registry) TriggerNow(name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	r.logger.Info("manually triggering job", "name", name)
	return r.execute(job)
}

// UpdateSchedule moves a job to a new schedule. On failure the old
// schedule stays in effect.
func (r *Registry) UpdateSchedule(name, schedule string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	id, err := r.cron.AddFunc(schedule, job.run)
	if err != nil {
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	r.cron.Remove(job.entryID)
	job.entryID = id
	job.schedule = schedule

	r.logger.Info("updated job schedule", "name", name, "schedule", schedule)
	return nil
}

// Start runs the cron loop in its own goroutine.
func (r *Registry) Start() {
	r.cron.Start()
	r.logger.Info("scheduler started", "jobs", len(r.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (r *Registry) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("scheduler stopped")
}
