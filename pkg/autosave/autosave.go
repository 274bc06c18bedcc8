// Package autosave periodically saves editing sessions with unsaved edits.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule saves dirty sessions every thirty seconds.
const DefaultSchedule = "@every 30s"

// Saver saves every session with unsaved edits.
type Saver interface {
	SaveDirty(ctx context.Context) (int, error)
}

// Scheduler runs a Saver on a cron schedule.
type Scheduler struct {
	saver    Saver
	schedule string
	logger   *slog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// New creates a scheduler. schedule accepts standard cron expressions and descriptors
// such as "@every 1m".
func New(saver Saver, schedule string, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule '%s': %w", schedule, err)
	}

	return &Scheduler{
		saver:    saver,
		schedule: schedule,
		logger:   logger.With("module", "autosave"),
	}, nil
}

// Start begins saving on the schedule until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	cronLogger := slogAdapter{s.logger}

	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	_, err := c.AddFunc(s.schedule, func() { s.RunOnce(ctx) })
	if err != nil {
		cancel()

		return fmt.Errorf("failed to add autosave job: %w", err)
	}

	c.Start()

	s.cron = c
	s.cancel = cancel

	s.logger.InfoContext(ctx, "autosave started", "schedule", s.schedule)

	return nil
}

// RunOnce saves the dirty sessions now and returns how many were saved.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	saved, err := s.saver.SaveDirty(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "autosave failed", "saved", saved, "error", err)
	}

	if saved > 0 {
		s.logger.DebugContext(ctx, "autosaved sessions", "saved", saved)
	}

	return saved
}

// Stop stops the schedule and waits for a running save to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.cancel()

	s.cron = nil
	s.cancel = nil

	s.logger.Info("autosave stopped")
}

// slogAdapter adapts slog to cron.Logger.
type slogAdapter struct {
	*slog.Logger
}

func (l slogAdapter) Info(msg string, keysAndValues ...any) {
	l.Debug(msg, keysAndValues...)
}

func (l slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	l.Logger.Error(msg, append(keysAndValues, "error", err)...)
}
