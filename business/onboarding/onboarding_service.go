package onboarding

import (
	"context"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
)

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	AdvanceOnboardingStep(ctx context.Context, id uint, from, to domain.OnboardingStep) (bool, error)
	FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.User, error)
	FindCompletedOnboarding(ctx context.Context) ([]domain.User, error)
}

// ReferralRepository contract interface
type ReferralRepository interface {
	CompletePending(ctx context.Context, referredID uint, rewardAmount float64, rewardCurrency string) (bool, error)
	FindByReferred(ctx context.Context, referredID uint) (domain.Referral, error)
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

// RewardNotifier tells a referrer their reward became claimable.
type RewardNotifier interface {
	NotifyReferralReward(ctx context.Context, referrerID uint, amount float64, currency string) error
}

type OnboardingService struct {
	userRepo       UserRepository
	referralRepo   ReferralRepository
	events         EventTracker
	rewards        RewardNotifier
	rewardAmount   float64
	rewardCurrency string
}

func NewOnboardingService(
	userRepo UserRepository,
	referralRepo ReferralRepository,
	events EventTracker,
	rewards RewardNotifier,
	rewardAmount float64,
	rewardCurrency string,
) *OnboardingService {
	return &OnboardingService{
		userRepo:       userRepo,
		referralRepo:   referralRepo,
		events:         events,
		rewards:        rewards,
		rewardAmount:   rewardAmount,
		rewardCurrency: rewardCurrency,
	}
}

// UpdateStep advances a user's onboarding. The transition is validated
// against the fixed progression and applied as a conditional update keyed
// on the step we read, so a concurrent writer cannot sneak a second
// transition through. Completing the final step also completes any pending
// referral and notifies the referrer.
func (s *OnboardingService) UpdateStep(ctx context.Context, userID uint, target domain.OnboardingStep, metadata map[string]any) (domain.User, error) {
	if domain.StepRank(target) < 0 {
		return domain.User{}, domain.ErrValidation("invalid onboarding step")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, domain.ErrNotFound("user not found")
	}

	if !domain.CanAdvance(user.OnboardingStep, target) {
		return domain.User{}, domain.ErrValidation("cannot move to a previous or current step")
	}

	ok, err := s.userRepo.AdvanceOnboardingStep(ctx, userID, user.OnboardingStep, target)
	if err != nil {
		logger.Error("Failed to advance onboarding step", err)
		return domain.User{}, err
	}
	if !ok {
		// Lost the race: someone moved the step between our read and write.
		return domain.User{}, domain.ErrValidation("cannot move to a previous or current step")
	}

	properties := map[string]any{
		"step":         target,
		"previousStep": user.OnboardingStep,
	}
	for k, v := range metadata {
		properties[k] = v
	}
	s.events.TrackQuiet(ctx, userID, domain.EventOnboardingStepCompleted, properties)

	if target == domain.StepKycComplete {
		s.completeReferral(ctx, userID)
	}

	user.OnboardingStep = target
	return user, nil
}

// completeReferral settles the referred side of the bargain once KYC is
// done: the pending referral becomes completed and claimable, and the
// referrer hears about it. Failures here never fail the step update.
func (s *OnboardingService) completeReferral(ctx context.Context, referredID uint) {
	ok, err := s.referralRepo.CompletePending(ctx, referredID, s.rewardAmount, s.rewardCurrency)
	if err != nil {
		logger.Error("Failed to complete referral", err)
		return
	}
	if !ok {
		return
	}

	referral, err := s.referralRepo.FindByReferred(ctx, referredID)
	if err != nil {
		logger.Error("Failed to load completed referral", err)
		return
	}

	s.events.TrackQuiet(ctx, referral.ReferrerID, domain.EventReferralCompleted, map[string]any{
		"referralId":   referral.ID,
		"referredId":   referredID,
		"rewardAmount": referral.RewardAmount,
	})

	if err := s.rewards.NotifyReferralReward(ctx, referral.ReferrerID, referral.RewardAmount, referral.RewardCurrency); err != nil {
		logger.Warn("Failed to notify referrer of reward", "referrer_id", referral.ReferrerID, "error", err)
	}
}

// StepStats breaks the user base down by current onboarding step.
type StepStats struct {
	Total    int                           `json:"total"`
	ByStep   map[domain.OnboardingStep]int `json:"by_step"`
	Dropoffs map[domain.OnboardingStep]int `json:"dropoffs"`
}

func (s *OnboardingService) GetStats(ctx context.Context, start, end time.Time) (StepStats, error) {
	users, err := s.userRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load users for onboarding stats", err)
		return StepStats{}, err
	}

	stats := StepStats{
		Total:    len(users),
		ByStep:   make(map[domain.OnboardingStep]int, len(domain.OnboardingSteps)),
		Dropoffs: make(map[domain.OnboardingStep]int, len(domain.OnboardingSteps)-1),
	}

	for _, step := range domain.OnboardingSteps {
		stats.ByStep[step] = 0
	}
	for _, user := range users {
		stats.ByStep[user.OnboardingStep]++
	}

	for i := 0; i < len(domain.OnboardingSteps)-1; i++ {
		step := domain.OnboardingSteps[i]
		next := domain.OnboardingSteps[i+1]
		stats.Dropoffs[step] = stats.ByStep[step] - stats.ByStep[next]
	}

	return stats, nil
}

// UserTimeStat is one user's signup-to-KYC duration in hours.
type UserTimeStat struct {
	UserID         uint `json:"user_id"`
	TimeToComplete int  `json:"time_to_complete_hours"`
}

// TimeStats reports how long completed users took to finish onboarding.
type TimeStats struct {
	AverageTimeToComplete int            `json:"average_time_to_complete_hours"`
	TimeStats             []UserTimeStat `json:"time_stats"`
}

func (s *OnboardingService) GetTimeStats(ctx context.Context) (TimeStats, error) {
	users, err := s.userRepo.FindCompletedOnboarding(ctx)
	if err != nil {
		logger.Error("Failed to load completed users for time stats", err)
		return TimeStats{}, err
	}

	result := TimeStats{TimeStats: make([]UserTimeStat, 0, len(users))}
	totalHours := 0
	for _, user := range users {
		hours := int(user.UpdatedAt.Sub(user.CreatedAt).Hours())
		totalHours += hours
		result.TimeStats = append(result.TimeStats, UserTimeStat{
			UserID:         user.ID,
			TimeToComplete: hours,
		})
	}

	if len(users) > 0 {
		result.AverageTimeToComplete = totalHours / len(users)
	}

	return result, nil
}
