package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Event is the append-only analytics substrate. Every domain action that
// matters to reporting lands here as one row.
type Event struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	EventName  string            `gorm:"column:event_name;not null;index" json:"event_name"`
	Properties datatypes.JSONMap `gorm:"column:properties" json:"properties"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	Timestamp  time.Time         `gorm:"column:timestamp;index" json:"timestamp"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// Well-known event names emitted by the services.
const (
	EventUserRegistered          = "user_registered"
	EventUserLoggedIn            = "user_logged_in"
	EventProfileUpdated          = "profile_updated"
	EventUserBlocked             = "user_blocked"
	EventUserUnblocked           = "user_unblocked"
	EventOnboardingStepCompleted = "onboarding_step_completed"
	EventReferralCompleted       = "referral_completed"
	EventReferralRewardClaimed   = "referral_reward_claimed"
	EventNotificationSent        = "notification_sent"
	EventNotificationRead        = "notification_read"
	EventInactivityNudgeSent     = "inactivity_nudge_sent"
	EventKycReminderSent         = "kyc_reminder_sent"
	EventExperimentCreated       = "experiment_created"
	EventExperimentExposure      = "experiment_exposure"
	EventExperimentConversion    = "experiment_conversion"
)
