package scheduler

import (
	"context"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
)

// UserRepository contract interface
type UserRepository interface {
	FindInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.User, error)
	FindPendingKyc(ctx context.Context, cutoff time.Time) ([]domain.User, error)
}

// NotificationDispatcher is the slice of the notification service the jobs
// drive.
type NotificationDispatcher interface {
	ProcessScheduled(ctx context.Context, now time.Time) (int, error)
	SendInactivityNudge(ctx context.Context, userID uint) error
	SendKycReminder(ctx context.Context, userID uint) error
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

// Jobs holds the periodic work the scheduler drives: the per-minute queue
// sweep and the two daily user scans.
type Jobs struct {
	userRepo        UserRepository
	dispatcher      NotificationDispatcher
	events          EventTracker
	inactivityDays  int
	kycReminderDays int
	jobTimeout      time.Duration
}

func NewJobs(
	userRepo UserRepository,
	dispatcher NotificationDispatcher,
	events EventTracker,
	inactivityDays int,
	kycReminderDays int,
) *Jobs {
	if inactivityDays <= 0 {
		inactivityDays = 7
	}
	if kycReminderDays <= 0 {
		kycReminderDays = 3
	}

	return &Jobs{
		userRepo:        userRepo,
		dispatcher:      dispatcher,
		events:          events,
		inactivityDays:  inactivityDays,
		kycReminderDays: kycReminderDays,
		jobTimeout:      5 * time.Minute,
	}
}

// ProcessScheduledNotifications drains the due portion of the delayed
// queue. Runs every minute; re-running with nothing newly due dispatches
// nothing.
func (j *Jobs) ProcessScheduledNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), j.jobTimeout)
	defer cancel()

	dispatched, err := j.dispatcher.ProcessScheduled(ctx, time.Now())
	if err != nil {
		logger.Error("Scheduled notification sweep failed", err)
		return
	}

	if dispatched > 0 {
		logger.Info("Scheduled notification sweep complete", "dispatched", dispatched)
	}
}

// SendInactivityNudges emails every active user quiet for longer than the
// threshold. Each user is handled independently so one failure cannot
// starve the rest of the batch.
func (j *Jobs) SendInactivityNudges() {
	ctx, cancel := context.WithTimeout(context.Background(), j.jobTimeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -j.inactivityDays)
	users, err := j.userRepo.FindInactiveSince(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to load inactive users", err)
		return
	}

	for _, user := range users {
		if err := j.dispatcher.SendInactivityNudge(ctx, user.ID); err != nil {
			logger.Error("Failed to send inactivity nudge", "user_id", user.ID, "error", err)
			continue
		}

		j.events.TrackQuiet(ctx, user.ID, domain.EventInactivityNudgeSent, map[string]any{
			"daysInactive": int(time.Since(user.LastActive).Hours() / 24),
		})
	}

	logger.Info("Inactivity nudge sweep complete", "candidates", len(users))
}

// SendKycReminders emails every active user who registered before the
// threshold and has not finished onboarding. Same per-user isolation as
// the nudge sweep.
func (j *Jobs) SendKycReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), j.jobTimeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -j.kycReminderDays)
	users, err := j.userRepo.FindPendingKyc(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to load users needing KYC", err)
		return
	}

	for _, user := range users {
		if err := j.dispatcher.SendKycReminder(ctx, user.ID); err != nil {
			logger.Error("Failed to send KYC reminder", "user_id", user.ID, "error", err)
			continue
		}

		j.events.TrackQuiet(ctx, user.ID, domain.EventKycReminderSent, map[string]any{
			"daysSinceSignup": int(time.Since(user.CreatedAt).Hours() / 24),
			"currentStep":     user.OnboardingStep,
		})
	}

	logger.Info("KYC reminder sweep complete", "candidates", len(users))
}
