// Package schedule runs recurring jobs on cron expressions.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/logging"
	"github.com/robfig/cron/v3"
)

const stopTimeout = 15 * time.Second

// Job is one scheduled unit of work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler wraps a cron runner whose jobs never overlap themselves and
// survive panics.
type Scheduler struct {
	runner *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a stopped Scheduler. Expressions use the standard five fields
// or descriptors such as @hourly.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "schedule")
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(
				cron.SkipIfStillRunning(cl),
				cron.Recover(cl),
			),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name.
func (s *Scheduler) Add(spec, name string, job Job) error {
	id, err := s.runner.AddFunc(spec, func() {
		start := time.Now()
		s.logger.Info("job started", "job", name)
		job(s.ctx)
		s.logger.Info("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec, "entry", int(id), "next", s.runner.Entry(id).Next)
	return nil
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.runner.Entries()) }

// Run starts the runner and blocks until ctx is cancelled, then stops it and
// waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) {
	s.runner.Start()
	<-ctx.Done()
	s.cancel()
	stopped := s.runner.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(stopTimeout):
		s.logger.Warn("scheduler stop timed out")
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
