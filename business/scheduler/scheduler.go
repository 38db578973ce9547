package scheduler

import (
	"context"
	"log/slog"

	"payvance/pkg/config"
	"payvance/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner driving the periodic jobs.
type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs
	cfg  config.SchedulerConfig
}

func NewScheduler(jobs *Jobs, cfg config.SchedulerConfig) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron: c,
		jobs: jobs,
		cfg:  cfg,
	}
}

// Start registers the three timers and begins running them.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.cfg.SweepSpec, s.jobs.ProcessScheduledNotifications); err != nil {
		logger.Error("Failed to schedule notification sweep", err)
	} else {
		logger.Info("Scheduled notification sweep", "spec", s.cfg.SweepSpec)
	}

	if _, err := s.cron.AddFunc(s.cfg.InactivityNudgeSpec, s.jobs.SendInactivityNudges); err != nil {
		logger.Error("Failed to schedule inactivity nudges", err)
	} else {
		logger.Info("Scheduled inactivity nudges", "spec", s.cfg.InactivityNudgeSpec)
	}

	if _, err := s.cron.AddFunc(s.cfg.KycReminderSpec, s.jobs.SendKycReminders); err != nil {
		logger.Error("Failed to schedule KYC reminders", err)
	} else {
		logger.Info("Scheduled KYC reminders", "spec", s.cfg.KycReminderSpec)
	}

	s.cron.Start()
}

// Stop halts scheduling and returns a context that completes once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
