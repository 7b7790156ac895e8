package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/zeus-tips-bot/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers each job on its configured cadence. A panicking job is
// recovered and logged; the scheduler keeps running even if every iteration
// fails.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	spec   config.Schedules
}

func NewScheduler(jobs *Jobs, logger *slog.Logger, spec config.Schedules) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	// Schedules are written as UTC; without an explicit location cron would
	// evaluate them in the host timezone.
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		jobs:   jobs,
		logger: logger,
		spec:   spec,
	}
}

// Start registers every job and starts the cron loop.
func (s *Scheduler) Start() {
	entries := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"daily_tips", s.spec.DailyTips, s.jobs.SendDailyTips},
		{"weekend_tips", s.spec.WeekendTips, s.jobs.SendDailyTips},
		{"live_tips", s.spec.LiveTips, s.jobs.SendLiveTips},
		{"results", s.spec.Results, s.jobs.CheckResults},
		{"subscriptions", s.spec.Subscriptions, s.jobs.ExpireSubscriptions},
		{"members", s.spec.Members, s.jobs.ReconcileChannelMembers},
		{"summary", s.spec.Summary, s.jobs.SendDailySummary},
	}
	for _, e := range entries {
		run := e.run
		if _, err := s.cron.AddFunc(e.spec, func() { run(context.Background()) }); err != nil {
			s.logger.Error("schedule job", "job", e.name, "spec", e.spec, "error", err)
			continue
		}
		s.logger.Info("scheduled job", "job", e.name, "spec", e.spec)
	}
	s.cron.Start()
}

// Stop stops the cron loop and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
