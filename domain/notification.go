package domain

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelSMS      NotificationChannel = "sms"
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelPush     NotificationChannel = "push"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationRead      NotificationStatus = "read"
)

type NotificationType string

const (
	NotificationKycReminder    NotificationType = "kyc_reminder"
	NotificationReferralReward NotificationType = "referral_reward"
	NotificationInactivity     NotificationType = "inactivity"
	NotificationWelcome        NotificationType = "welcome"
	NotificationCustom         NotificationType = "custom"
)

var ValidChannels = map[NotificationChannel]bool{
	ChannelEmail:    true,
	ChannelSMS:      true,
	ChannelWhatsApp: true,
	ChannelPush:     true,
}

var ValidNotificationTypes = map[NotificationType]bool{
	NotificationKycReminder:    true,
	NotificationReferralReward: true,
	NotificationInactivity:     true,
	NotificationWelcome:        true,
	NotificationCustom:         true,
}

type Notification struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	UserID       uint                `gorm:"column:user_id;not null;index" json:"user_id"`
	Type         NotificationType    `gorm:"column:type;not null;index" json:"type"`
	Channel      NotificationChannel `gorm:"column:channel;not null" json:"channel"`
	Status       NotificationStatus  `gorm:"column:status;default:pending;index" json:"status"`
	Title        string              `gorm:"column:title;not null" json:"title"`
	Content      string              `gorm:"column:content;type:text;not null" json:"content"`
	Read         bool                `gorm:"column:read;default:false;index" json:"read"`
	Metadata     datatypes.JSONMap   `gorm:"column:metadata" json:"metadata"`
	ScheduledFor *time.Time          `gorm:"column:scheduled_for;index" json:"scheduled_for,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// RetryCount reads the dispatch retry counter out of metadata. Metadata is
// JSONB, so numbers come back as float64.
func (n *Notification) RetryCount() int {
	if n.Metadata == nil {
		return 0
	}
	switch v := n.Metadata["retryCount"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
