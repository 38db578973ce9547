package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
	ReferralFailed    ReferralStatus = "failed"
	ReferralRewarded  ReferralStatus = "rewarded"
)

type Referral struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	ReferrerID     uint              `gorm:"column:referrer_id;not null;index" json:"referrer_id"`
	ReferredID     uint              `gorm:"column:referred_id;not null;index" json:"referred_id"`
	ReferralCode   string            `gorm:"column:referral_code;not null;index" json:"referral_code"`
	Status         ReferralStatus    `gorm:"column:status;default:pending;index" json:"status"`
	RewardAmount   float64           `gorm:"column:reward_amount;type:decimal(10,2);default:0" json:"reward_amount"`
	RewardCurrency string            `gorm:"column:reward_currency;default:NGN" json:"reward_currency"`
	RewardPaid     bool              `gorm:"column:reward_paid;default:false" json:"reward_paid"`
	RewardPaidAt   *time.Time        `gorm:"column:reward_paid_at" json:"reward_paid_at,omitempty"`
	FraudScore     int               `gorm:"column:fraud_score;default:0" json:"fraud_score"`
	Metadata       datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Referred *User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"`
}

func (Referral) TableName() string {
	return "referrals"
}
