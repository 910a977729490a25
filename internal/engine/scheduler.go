package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CycleRunner runs one sync cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// Scheduler runs cycles back to back with a fixed pause after each one.
// Cycles never overlap.
type Scheduler struct {
	runner   CycleRunner
	logger   *slog.Logger
	interval time.Duration
}

// NewScheduler creates a scheduler. The interval must be positive.
func NewScheduler(runner CycleRunner, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}, nil
}

// Run loops until ctx is canceled. Cycle failures, including panics, are
// logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started", "interval", s.interval)

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Cycle panicked", "panic", r)
		}
	}()

	if ctx.Err() != nil {
		return
	}

	result, err := s.runner.RunCycle(ctx)
	if err != nil {
		s.logger.Warn("Cycle failed, retrying next tick",
			"cycle_id", result.CycleID,
			"next_in", s.interval,
			"error", err)
		return
	}

	s.logger.Debug("Cycle finished",
		"cycle_id", result.CycleID,
		"inserted", result.Inserted,
		"duration", result.Duration)
}
