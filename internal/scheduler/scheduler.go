package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/apod-api/internal/metrics"
)

// Refresher is the job the scheduler runs once a day.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler fires the daily refresh at a fixed UTC time of day.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	hour      int
	minute    int
	timeout   time.Duration
	log       *zap.SugaredLogger
}

// New creates a new Scheduler firing every day at `at` (HH:MM, UTC).
func New(at string, refresher Refresher, log *zap.SugaredLogger) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh time %q: %w", at, err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		hour:      t.Hour(),
		minute:    t.Minute(),
		timeout:   2 * time.Minute,
		log:       log,
	}, nil
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:%02d", s.hour, s.minute)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.run); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Infow("scheduler: daily refresh scheduled",
		"at", at+" UTC",
		"next_run", s.NextRun(time.Now()).Format(time.RFC3339),
	)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// NextRun returns the first fire time strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	return NextRun(now, s.hour, s.minute)
}

// NextRun returns today's hour:minute UTC, or tomorrow's if now has already
// reached it.
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// run never lets a failure escape: errors and panics are logged and the
// next firing proceeds as usual.
func (s *Scheduler) run() {
	defer func() {
		if r := recover(); r != nil {
			metrics.RefreshRuns.WithLabelValues("error").Inc()
			s.log.Errorw("scheduler: refresh panicked", "panic", r)
		}
	}()

	s.log.Infow("scheduler: running daily refresh")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		metrics.RefreshRuns.WithLabelValues("error").Inc()
		s.log.Errorw("scheduler: refresh failed", "err", err)
		return
	}

	metrics.RefreshRuns.WithLabelValues("ok").Inc()
	s.log.Infow("scheduler: refresh completed", "at", time.Now().UTC().Format(time.RFC3339))
}
