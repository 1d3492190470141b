package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// defaultRestartDelay is the fixed backoff between session restarts
const defaultRestartDelay = 10 * time.Second

// Supervisor wraps the session run loop in restart-on-fatal-error with
// a fixed delay. The sleep function is injectable so restart behavior
// is testable without real delays.
type Supervisor struct {
	run    func(ctx context.Context) error
	logger *slog.Logger

	// Delay between restarts; defaults to 10 seconds
	Delay time.Duration

	// Sleep waits for the given duration or until the context ends
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor creates a supervisor around one session-building run
// function. run is expected to block for the session's lifetime.
func NewSupervisor(run func(ctx context.Context) error, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		run:    run,
		logger: logger.With("component", "supervisor"),
		Delay:  defaultRestartDelay,
		Sleep:  sleepCtx,
	}
}

// Run keeps the session alive until the context is cancelled. Every
// attempt gets its own run ID for log correlation.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		runID := uuid.NewString()
		s.logger.Info("session starting", "run_id", runID)

		err := s.run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.Error("session terminated", "run_id", runID, "error", err)
		} else {
			s.logger.Warn("session exited cleanly, restarting anyway", "run_id", runID)
		}

		s.logger.Info("restarting", "run_id", runID, "delay", s.Delay.String())
		if err := s.Sleep(ctx, s.Delay); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
