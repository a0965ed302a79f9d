package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CronScheduler triggers a job on a cron expression. A trigger that fires
// while the previous job is still running is skipped, so at most one relay
// pass is ever in flight.
type CronScheduler struct {
	expr     string
	schedule cron.Schedule
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewCronScheduler parses a five-field expression or a descriptor such as
// "@daily" or "@every 6h", evaluated in loc.
func NewCronScheduler(expr string, loc *time.Location, log *slog.Logger) (*CronScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}

	cl := cronLogger{log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &CronScheduler{expr: expr, schedule: schedule, cron: c, logger: log}, nil
}

// Next reports the first trigger strictly after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.schedule.Next(t)
}

// Run blocks until ctx is done, calling job on every trigger. Jobs still
// running at shutdown are awaited before Run returns.
func (c *CronScheduler) Run(ctx context.Context, job func(context.Context)) error {
	if job == nil {
		return fmt.Errorf("scheduler job is nil")
	}

	if _, err := c.cron.AddFunc(c.expr, func() { job(ctx) }); err != nil {
		return fmt.Errorf("add schedule: %w", err)
	}

	c.cron.Start()
	c.logger.Info("scheduler started", "schedule", c.expr, "next_run", c.Next(time.Now()))

	<-ctx.Done()
	<-c.cron.Stop().Done()
	c.logger.Info("scheduler stopped")
	return nil
}

// cronLogger routes robfig/cron diagnostics into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
