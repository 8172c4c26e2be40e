// internal/matching/scheduler.go

package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Jobs are the periodic lifecycle tasks
type Jobs interface {
	GenerateForActiveUsers(ctx context.Context, limit int) (*GenerationReport, error)
	ExpireStale(ctx context.Context) (int, error)
}

// ScheduleConfig holds the cron expressions, with a leading seconds field
type ScheduleConfig struct {
	SuggestionCron string
	CleanupCron    string
	Limit          int
	Location       *time.Location
}

// Scheduler runs daily generation and expiry of stale suggestions
type Scheduler struct {
	jobs Jobs
	cfg  ScheduleConfig
	log  zerolog.Logger

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for jobs
func NewScheduler(jobs Jobs, cfg ScheduleConfig) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{jobs: jobs, cfg: cfg, log: logging.Component("scheduler")}
}

// Start registers the jobs and starts the cron loop. Jobs run with a context
// derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New(rcron.WithSeconds(), rcron.WithLocation(s.cfg.Location))

	if _, err := c.AddFunc(s.cfg.SuggestionCron, func() { s.RunGeneration(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid suggestion schedule %q: %w", s.cfg.SuggestionCron, err)
	}
	if _, err := c.AddFunc(s.cfg.CleanupCron, func() { s.RunCleanup(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.cfg.CleanupCron, err)
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.log.Info().
		Str("suggestions", s.cfg.SuggestionCron).
		Str("cleanup", s.cfg.CleanupCron).
		Msg("scheduler started")
	return nil
}

// Stop cancels running jobs and waits up to five seconds for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out waiting for running jobs")
	}
	s.log.Info().Msg("scheduler stopped")
}

// RunGeneration runs one generation pass
func (s *Scheduler) RunGeneration(ctx context.Context) {
	if _, err := s.jobs.GenerateForActiveUsers(ctx, s.cfg.Limit); err != nil {
		s.log.Error().Err(err).Msg("scheduled suggestion generation failed")
	}
}

// RunCleanup runs one expiry pass
func (s *Scheduler) RunCleanup(ctx context.Context) {
	if _, err := s.jobs.ExpireStale(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled suggestion expiry failed")
	}
}
