package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	mu       sync.Mutex
	limits   []int
	cleanups int
	started  chan struct{}
	block    bool
	canceled bool
}

func (f *fakeJobs) GenerateForActiveUsers(ctx context.Context, limit int) (*GenerationReport, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	block := f.block
	f.mu.Unlock()

	if block {
		select {
		case f.started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		f.mu.Lock()
		f.canceled = true
		f.mu.Unlock()
		return nil, ctx.Err()
	}
	return &GenerationReport{}, nil
}

func (f *fakeJobs) ExpireStale(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return 0, nil
}

func newTestScheduler(jobs Jobs, cfg ScheduleConfig) *Scheduler {
	s := NewScheduler(jobs, cfg)
	s.log = logging.Nop()
	return s
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		cfg  ScheduleConfig
		want string
	}{
		{"suggestion", ScheduleConfig{SuggestionCron: "every day", CleanupCron: "0 0 2 * * *"}, "invalid suggestion schedule"},
		{"cleanup", ScheduleConfig{SuggestionCron: "0 0 9 * * *", CleanupCron: "0 0 2 * *"}, "invalid cleanup schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(&fakeJobs{}, tt.cfg)
			err := s.Start(context.Background())
			assert.ErrorContains(t, err, tt.want)
			assert.Nil(t, s.cron)

			s.Stop()
		})
	}
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	s := newTestScheduler(&fakeJobs{}, ScheduleConfig{SuggestionCron: "0 0 9 * * *", CleanupCron: "0 0 2 * * *"})
	assert.Equal(t, time.UTC, s.cfg.Location)

	require.NoError(t, s.Start(context.Background()))
	first := s.cron
	require.NoError(t, s.Start(context.Background()))
	assert.Same(t, first, s.cron)

	s.Stop()
	assert.Nil(t, s.cron)
	s.Stop()

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestSchedulerRunPasses(t *testing.T) {
	jobs := &fakeJobs{}
	s := newTestScheduler(jobs, ScheduleConfig{Limit: 7})

	s.RunGeneration(context.Background())
	s.RunCleanup(context.Background())

	assert.Equal(t, []int{7}, jobs.limits)
	assert.Equal(t, 1, jobs.cleanups)
}

func TestSchedulerStopCancelsRunningJob(t *testing.T) {
	jobs := &fakeJobs{block: true, started: make(chan struct{}, 1)}
	s := newTestScheduler(jobs, ScheduleConfig{SuggestionCron: "* * * * * *", CleanupCron: "0 0 2 * * *", Limit: 3})

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-jobs.started:
	case <-time.After(3 * time.Second):
		s.Stop()
		t.Fatal("generation job did not run")
	}
	s.Stop()

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.True(t, jobs.canceled)
	assert.Equal(t, 3, jobs.limits[0])
}
