package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"payvance/domain"
)

type stubUserRepo struct {
	user       domain.User
	findErr    error
	advanceOK  bool
	advanceErr error
	advanced   []domain.OnboardingStep
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	return s.user, s.findErr
}

func (s *stubUserRepo) AdvanceOnboardingStep(ctx context.Context, id uint, from, to domain.OnboardingStep) (bool, error) {
	s.advanced = append(s.advanced, to)
	return s.advanceOK, s.advanceErr
}

func (s *stubUserRepo) FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) FindCompletedOnboarding(ctx context.Context) ([]domain.User, error) {
	return nil, nil
}

type stubReferralRepo struct {
	completeOK  bool
	completeErr error
	completed   int
	referral    domain.Referral
	findErr     error
}

func (s *stubReferralRepo) CompletePending(ctx context.Context, referredID uint, amount float64, currency string) (bool, error) {
	s.completed++
	return s.completeOK, s.completeErr
}

func (s *stubReferralRepo) FindByReferred(ctx context.Context, referredID uint) (domain.Referral, error) {
	return s.referral, s.findErr
}

type stubTracker struct {
	events []string
}

func (s *stubTracker) TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any) {
	s.events = append(s.events, eventName)
}

type stubNotifier struct {
	notified []uint
	err      error
}

func (s *stubNotifier) NotifyReferralReward(ctx context.Context, referrerID uint, amount float64, currency string) error {
	s.notified = append(s.notified, referrerID)
	return s.err
}

func newTestService(userRepo *stubUserRepo, referralRepo *stubReferralRepo, tracker *stubTracker, notifier *stubNotifier) *OnboardingService {
	return NewOnboardingService(userRepo, referralRepo, tracker, notifier, 1000, "NGN")
}

func TestUpdateStepRejectsUnknownStep(t *testing.T) {
	svc := newTestService(&stubUserRepo{}, &stubReferralRepo{}, &stubTracker{}, &stubNotifier{})

	_, err := svc.UpdateStep(context.Background(), 1, domain.OnboardingStep("nonsense"), nil)
	if err == nil {
		t.Fatal("expected error for unknown step")
	}
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != 400 {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestUpdateStepRejectsBackwardTransition(t *testing.T) {
	userRepo := &stubUserRepo{user: domain.User{ID: 1, OnboardingStep: domain.StepSelfie}}
	svc := newTestService(userRepo, &stubReferralRepo{}, &stubTracker{}, &stubNotifier{})

	_, err := svc.UpdateStep(context.Background(), 1, domain.StepPhone, nil)
	if err == nil {
		t.Fatal("expected error for backward transition")
	}
	if len(userRepo.advanced) != 0 {
		t.Fatal("no write should happen for an invalid transition")
	}
}

func TestUpdateStepLostRaceBehavesLikeInvalidTransition(t *testing.T) {
	userRepo := &stubUserRepo{
		user:      domain.User{ID: 1, OnboardingStep: domain.StepEmail},
		advanceOK: false,
	}
	svc := newTestService(userRepo, &stubReferralRepo{}, &stubTracker{}, &stubNotifier{})

	_, err := svc.UpdateStep(context.Background(), 1, domain.StepPhone, nil)
	if err == nil {
		t.Fatal("expected error when the conditional update matched nothing")
	}
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != 400 {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestUpdateStepAdvancesAndTracks(t *testing.T) {
	userRepo := &stubUserRepo{
		user:      domain.User{ID: 1, OnboardingStep: domain.StepEmail},
		advanceOK: true,
	}
	tracker := &stubTracker{}
	svc := newTestService(userRepo, &stubReferralRepo{}, tracker, &stubNotifier{})

	updated, err := svc.UpdateStep(context.Background(), 1, domain.StepPhone, map[string]any{"source": "mobile"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.OnboardingStep != domain.StepPhone {
		t.Fatalf("expected step %q, got %q", domain.StepPhone, updated.OnboardingStep)
	}
	if len(tracker.events) != 1 || tracker.events[0] != domain.EventOnboardingStepCompleted {
		t.Fatalf("expected one %s event, got %v", domain.EventOnboardingStepCompleted, tracker.events)
	}
}

func TestKycCompleteSettlesReferralAndNotifiesReferrer(t *testing.T) {
	userRepo := &stubUserRepo{
		user:      domain.User{ID: 2, OnboardingStep: domain.StepSelfie},
		advanceOK: true,
	}
	referralRepo := &stubReferralRepo{
		completeOK: true,
		referral: domain.Referral{
			ID:             7,
			ReferrerID:     1,
			ReferredID:     2,
			RewardAmount:   1000,
			RewardCurrency: "NGN",
		},
	}
	tracker := &stubTracker{}
	notifier := &stubNotifier{}
	svc := newTestService(userRepo, referralRepo, tracker, notifier)

	_, err := svc.UpdateStep(context.Background(), 2, domain.StepKycComplete, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if referralRepo.completed != 1 {
		t.Fatalf("expected one referral completion, got %d", referralRepo.completed)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != 1 {
		t.Fatalf("expected referrer 1 to be notified, got %v", notifier.notified)
	}
}

func TestReferralFailureDoesNotFailStepUpdate(t *testing.T) {
	userRepo := &stubUserRepo{
		user:      domain.User{ID: 2, OnboardingStep: domain.StepSelfie},
		advanceOK: true,
	}
	referralRepo := &stubReferralRepo{completeErr: errors.New("db down")}
	svc := newTestService(userRepo, referralRepo, &stubTracker{}, &stubNotifier{})

	if _, err := svc.UpdateStep(context.Background(), 2, domain.StepKycComplete, nil); err != nil {
		t.Fatalf("referral settlement failure must not fail the step update: %v", err)
	}
}

func TestNonFinalStepLeavesReferralAlone(t *testing.T) {
	userRepo := &stubUserRepo{
		user:      domain.User{ID: 2, OnboardingStep: domain.StepEmail},
		advanceOK: true,
	}
	referralRepo := &stubReferralRepo{completeOK: true}
	svc := newTestService(userRepo, referralRepo, &stubTracker{}, &stubNotifier{})

	if _, err := svc.UpdateStep(context.Background(), 2, domain.StepPhone, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if referralRepo.completed != 0 {
		t.Fatal("referral must only settle on the final step")
	}
}
