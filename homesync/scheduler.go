// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config holds the scheduler's timing knobs.
type Config struct {
	Interval   time.Duration // wall-clock interval between passes
	BackoffMin time.Duration // first delay after a failed pass
	BackoffMax time.Duration // backoff ceiling
}

// DefaultConfig returns the standard scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:   30 * time.Second,
		BackoffMin: 1 * time.Second,
		BackoffMax: 60 * time.Second,
	}
}

// Scheduler triggers reconciliation on a fixed interval while the app is
// active, and on demand via SyncNow. Ticks that land while a pass is in
// flight are dropped; the next tick catches up.
type Scheduler struct {
	engine *Engine
	config *Config
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler for the given engine. A nil config uses
// DefaultConfig; a nil logger uses slog.Default().
func NewScheduler(engine *Engine, config *Config, logger *slog.Logger) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine: engine,
		config: config,
		logger: logger,
	}
}

// Start launches the timer loop. It returns immediately; the loop runs
// until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop tears the timer down. No sync is attempted after Stop returns.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// SyncNow triggers a pass immediately (manual pull-to-refresh). If a pass
// is already in flight it returns ErrSyncInProgress.
func (s *Scheduler) SyncNow(ctx context.Context) (*SyncResult, error) {
	return s.engine.Sync(ctx)
}

// run sleeps the configured interval between passes, stretching to an
// exponential backoff after failures and snapping back on success.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	backoff := s.config.BackoffMin
	delay := s.config.Interval
	for {
		if err := sleepWithContext(ctx, delay); err != nil {
			return
		}

		_, err := s.engine.Sync(ctx)
		switch {
		case err == nil:
			backoff = s.config.BackoffMin
			delay = s.config.Interval
		case errors.Is(err, ErrSyncInProgress):
			// Tick lost to an in-flight pass; try again next interval.
			delay = s.config.Interval
		default:
			s.logger.Warn("scheduled sync failed", "error", err, "retry_in", backoff)
			delay = backoff
			backoff = backoff * 2
			if backoff > s.config.BackoffMax {
				backoff = s.config.BackoffMax
			}
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
