package domain

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleMarketer UserRole = "marketer"
	RoleAnalyst  UserRole = "analyst"
	RoleUser     UserRole = "user"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

type OnboardingStep string

const (
	StepEmail       OnboardingStep = "email"
	StepPhone       OnboardingStep = "phone"
	StepBVN         OnboardingStep = "bvn"
	StepSelfie      OnboardingStep = "selfie"
	StepKycComplete OnboardingStep = "kyc_complete"
)

type KycStatus string

const (
	KycPending    KycStatus = "pending"
	KycFailed     KycStatus = "failed"
	KycSuccessful KycStatus = "successful"
)

type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"column:email;unique;not null" json:"email"`
	Phone             string         `gorm:"column:phone;unique;not null" json:"phone"`
	Password          string         `gorm:"column:password;not null" json:"-"`
	FirstName         string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName          string         `gorm:"column:last_name;not null" json:"last_name"`
	Role              UserRole       `gorm:"column:role;default:user" json:"role"`
	Status            UserStatus     `gorm:"column:status;default:active" json:"status"`
	OnboardingStep    OnboardingStep `gorm:"column:onboarding_step;default:email" json:"onboarding_step"`
	KycStatus         KycStatus      `gorm:"column:kyc_status;default:pending" json:"kyc_status"`
	ReferralCode      string         `gorm:"column:referral_code;unique" json:"referral_code"`
	ReferredBy        *uint          `gorm:"column:referred_by" json:"referred_by,omitempty"`
	DeviceFingerprint string         `gorm:"column:device_fingerprint;not null" json:"device_fingerprint"`
	LastActive        time.Time      `gorm:"column:last_active" json:"last_active"`
	FraudScore        int            `gorm:"column:fraud_score;default:0" json:"fraud_score"`
	IsBlocked         bool           `gorm:"column:is_blocked;default:false" json:"is_blocked"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// OnboardingSteps is the authoritative progression order. A user may only
// move to a step with a strictly higher rank than their current one.
var OnboardingSteps = []OnboardingStep{
	StepEmail,
	StepPhone,
	StepBVN,
	StepSelfie,
	StepKycComplete,
}

var stepRank = func() map[OnboardingStep]int {
	m := make(map[OnboardingStep]int, len(OnboardingSteps))
	for i, s := range OnboardingSteps {
		m[s] = i
	}
	return m
}()

// StepRank returns the position of the step in the onboarding progression,
// or -1 if the step is unknown.
func StepRank(step OnboardingStep) int {
	rank, ok := stepRank[step]
	if !ok {
		return -1
	}
	return rank
}

// CanAdvance reports whether moving from current to target is a valid
// forward transition.
func CanAdvance(current, target OnboardingStep) bool {
	from, to := StepRank(current), StepRank(target)
	return from >= 0 && to >= 0 && to > from
}
