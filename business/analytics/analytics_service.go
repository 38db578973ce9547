package analytics

import (
	"context"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
)

// UserRepository contract interface
type UserRepository interface {
	FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.User, error)
}

// ReferralRepository contract interface
type ReferralRepository interface {
	FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Referral, error)
}

// EventRepository contract interface
type EventRepository interface {
	FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Event, error)
}

// NotificationRepository contract interface
type NotificationRepository interface {
	FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Notification, error)
}

// AnalyticsService produces the admin rollups. All aggregation happens
// in-process over the raw rows, matching the modest data volumes of an
// onboarding funnel.
type AnalyticsService struct {
	userRepo         UserRepository
	referralRepo     ReferralRepository
	eventRepo        EventRepository
	notificationRepo NotificationRepository
}

func NewAnalyticsService(
	userRepo UserRepository,
	referralRepo ReferralRepository,
	eventRepo EventRepository,
	notificationRepo NotificationRepository,
) *AnalyticsService {
	return &AnalyticsService{
		userRepo:         userRepo,
		referralRepo:     referralRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
	}
}

// OnboardingReport breaks users down by step with per-transition drop-offs.
type OnboardingReport struct {
	TotalUsers int                           `json:"total_users"`
	StepCounts map[domain.OnboardingStep]int `json:"step_counts"`
	DropOffs   map[string]int                `json:"drop_offs"`
}

func (s *AnalyticsService) Onboarding(ctx context.Context, start, end time.Time) (OnboardingReport, error) {
	users, err := s.userRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load users for onboarding analytics", err)
		return OnboardingReport{}, err
	}

	report := OnboardingReport{
		TotalUsers: len(users),
		StepCounts: map[domain.OnboardingStep]int{},
		DropOffs:   map[string]int{},
	}

	for _, user := range users {
		report.StepCounts[user.OnboardingStep]++
	}

	for i := 0; i < len(domain.OnboardingSteps)-1; i++ {
		step := domain.OnboardingSteps[i]
		next := domain.OnboardingSteps[i+1]
		report.DropOffs[string(step)+"_to_"+string(next)] = report.StepCounts[step] - report.StepCounts[next]
	}

	return report, nil
}

// ReferralReport counts referrals by status and sums rewards on offer.
type ReferralReport struct {
	TotalReferrals int                           `json:"total_referrals"`
	StatusCounts   map[domain.ReferralStatus]int `json:"status_counts"`
	TotalRewards   float64                       `json:"total_rewards"`
}

func (s *AnalyticsService) Referrals(ctx context.Context, start, end time.Time) (ReferralReport, error) {
	referrals, err := s.referralRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load referrals for analytics", err)
		return ReferralReport{}, err
	}

	report := ReferralReport{
		TotalReferrals: len(referrals),
		StatusCounts:   map[domain.ReferralStatus]int{},
	}

	for _, referral := range referrals {
		report.StatusCounts[referral.Status]++
		report.TotalRewards += referral.RewardAmount
	}

	return report, nil
}

// EventReport counts events by name plus a per-day time series.
type EventReport struct {
	TotalEvents int            `json:"total_events"`
	EventCounts map[string]int `json:"event_counts"`
	TimeSeries  map[string]int `json:"time_series"`
}

func (s *AnalyticsService) Events(ctx context.Context, start, end time.Time) (EventReport, error) {
	events, err := s.eventRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load events for analytics", err)
		return EventReport{}, err
	}

	report := EventReport{
		TotalEvents: len(events),
		EventCounts: map[string]int{},
		TimeSeries:  map[string]int{},
	}

	for _, event := range events {
		report.EventCounts[event.EventName]++
		report.TimeSeries[event.CreatedAt.Format("2006-01-02")]++
	}

	return report, nil
}

// NotificationReport counts notifications along every axis and the read rate.
type NotificationReport struct {
	TotalNotifications int                                `json:"total_notifications"`
	TypeCounts         map[domain.NotificationType]int    `json:"type_counts"`
	ChannelCounts      map[domain.NotificationChannel]int `json:"channel_counts"`
	StatusCounts       map[domain.NotificationStatus]int  `json:"status_counts"`
	ReadRate           float64                            `json:"read_rate"`
}

func (s *AnalyticsService) Notifications(ctx context.Context, start, end time.Time) (NotificationReport, error) {
	notifications, err := s.notificationRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load notifications for analytics", err)
		return NotificationReport{}, err
	}

	report := NotificationReport{
		TotalNotifications: len(notifications),
		TypeCounts:         map[domain.NotificationType]int{},
		ChannelCounts:      map[domain.NotificationChannel]int{},
		StatusCounts:       map[domain.NotificationStatus]int{},
	}

	readCount := 0
	for _, notification := range notifications {
		report.TypeCounts[notification.Type]++
		report.ChannelCounts[notification.Channel]++
		report.StatusCounts[notification.Status]++
		if notification.Read {
			readCount++
		}
	}

	if len(notifications) > 0 {
		report.ReadRate = float64(readCount) / float64(len(notifications))
	}

	return report, nil
}

// RetentionReport is the share of users still active within each window.
type RetentionReport struct {
	TotalUsers     int                `json:"total_users"`
	ActiveUsers    int                `json:"active_users"`
	RetentionRates map[string]float64 `json:"retention_rates"`
}

var retentionWindows = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

func (s *AnalyticsService) Retention(ctx context.Context, start, end time.Time) (RetentionReport, error) {
	users, err := s.userRepo.FindAllInRange(ctx, start, end)
	if err != nil {
		logger.Error("Failed to load users for retention analytics", err)
		return RetentionReport{}, err
	}

	report := RetentionReport{
		TotalUsers:     len(users),
		RetentionRates: map[string]float64{"7d": 0, "30d": 0, "90d": 0},
	}

	now := time.Now()
	activeWithin := map[string]int{}
	for _, user := range users {
		if user.Status != domain.UserStatusActive {
			continue
		}
		report.ActiveUsers++

		daysSinceActive := int(now.Sub(user.LastActive).Hours() / 24)
		for window, days := range retentionWindows {
			if daysSinceActive <= days {
				activeWithin[window]++
			}
		}
	}

	if report.TotalUsers > 0 {
		for window := range retentionWindows {
			report.RetentionRates[window] = float64(activeWithin[window]) / float64(report.TotalUsers)
		}
	}

	return report, nil
}
