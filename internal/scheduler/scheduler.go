// Package scheduler optionally re-runs the whole batch (snapshot re-pull
// plus all analyses) on a cron schedule. The default mode of the worker is
// a single one-shot run; the scheduler exists for deployments that want a
// fresh nightly report.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler triggers the batch on a cron schedule
type Scheduler struct {
	spec string
	run  func(ctx context.Context) error
	cron *cron.Cron
}

// NewScheduler creates a scheduler that invokes run on the given cron spec
func NewScheduler(spec string, run func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		spec: spec,
		run:  run,
		cron: cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info().Msg("Running scheduled batch...")
		if err := s.run(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled batch failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule batch: %w", err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("Batch re-run scheduled")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}
