package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"payvance/domain"
)

type stubUserRepo struct {
	inactive []domain.User
	pending  []domain.User
	err      error
}

func (s *stubUserRepo) FindInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	return s.inactive, s.err
}

func (s *stubUserRepo) FindPendingKyc(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	return s.pending, s.err
}

type stubDispatcher struct {
	processed  int
	processErr error
	nudged     []uint
	nudgeErrs  map[uint]error
	reminded   []uint
	remindErrs map[uint]error
}

func (s *stubDispatcher) ProcessScheduled(ctx context.Context, now time.Time) (int, error) {
	return s.processed, s.processErr
}

func (s *stubDispatcher) SendInactivityNudge(ctx context.Context, userID uint) error {
	if err := s.nudgeErrs[userID]; err != nil {
		return err
	}
	s.nudged = append(s.nudged, userID)
	return nil
}

func (s *stubDispatcher) SendKycReminder(ctx context.Context, userID uint) error {
	if err := s.remindErrs[userID]; err != nil {
		return err
	}
	s.reminded = append(s.reminded, userID)
	return nil
}

type stubTracker struct {
	events []string
}

func (s *stubTracker) TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any) {
	s.events = append(s.events, eventName)
}

func TestSendInactivityNudgesIsolatesFailures(t *testing.T) {
	userRepo := &stubUserRepo{inactive: []domain.User{
		{ID: 1, LastActive: time.Now().AddDate(0, 0, -10)},
		{ID: 2, LastActive: time.Now().AddDate(0, 0, -12)},
		{ID: 3, LastActive: time.Now().AddDate(0, 0, -8)},
	}}
	dispatcher := &stubDispatcher{nudgeErrs: map[uint]error{2: errors.New("mailer down")}}
	tracker := &stubTracker{}
	jobs := NewJobs(userRepo, dispatcher, tracker, 7, 3)

	jobs.SendInactivityNudges()

	if len(dispatcher.nudged) != 2 {
		t.Fatalf("expected 2 nudges despite one failure, got %v", dispatcher.nudged)
	}
	if len(tracker.events) != 2 {
		t.Fatalf("expected 2 tracked events, got %v", tracker.events)
	}
	for _, name := range tracker.events {
		if name != domain.EventInactivityNudgeSent {
			t.Fatalf("unexpected event %q", name)
		}
	}
}

func TestSendKycRemindersIsolatesFailures(t *testing.T) {
	userRepo := &stubUserRepo{pending: []domain.User{
		{ID: 1, OnboardingStep: domain.StepPhone},
		{ID: 2, OnboardingStep: domain.StepBVN},
	}}
	dispatcher := &stubDispatcher{remindErrs: map[uint]error{1: errors.New("mailer down")}}
	tracker := &stubTracker{}
	jobs := NewJobs(userRepo, dispatcher, tracker, 7, 3)

	jobs.SendKycReminders()

	if len(dispatcher.reminded) != 1 || dispatcher.reminded[0] != 2 {
		t.Fatalf("expected only user 2 reminded, got %v", dispatcher.reminded)
	}
	if len(tracker.events) != 1 || tracker.events[0] != domain.EventKycReminderSent {
		t.Fatalf("expected one %s event, got %v", domain.EventKycReminderSent, tracker.events)
	}
}

func TestJobsSurviveRepositoryErrors(t *testing.T) {
	userRepo := &stubUserRepo{err: errors.New("db down")}
	dispatcher := &stubDispatcher{processErr: errors.New("redis down")}
	jobs := NewJobs(userRepo, dispatcher, &stubTracker{}, 7, 3)

	// None of these may panic; failures are logged and absorbed.
	jobs.ProcessScheduledNotifications()
	jobs.SendInactivityNudges()
	jobs.SendKycReminders()

	if len(dispatcher.nudged) != 0 || len(dispatcher.reminded) != 0 {
		t.Fatal("no dispatches expected when the user scan fails")
	}
}
