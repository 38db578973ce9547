package postgres

import (
	"context"
	"errors"
	"time"

	"payvance/domain"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	DB *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{
		DB: db,
	}
}

func (r *ReferralRepository) Create(ctx context.Context, referral *domain.Referral) error {
	if err := r.DB.WithContext(ctx).Create(referral).Error; err != nil {
		return err
	}

	return nil
}

func (r *ReferralRepository) FindByID(ctx context.Context, id uint) (domain.Referral, error) {
	var referral domain.Referral

	err := r.DB.WithContext(ctx).First(&referral, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Referral{}, domain.ErrNotFound("referral not found")
		}
		return domain.Referral{}, err
	}

	return referral, nil
}

// FindByReferrer lists a user's referrals, optionally bounded by creation
// time, with the referred user preloaded for display.
func (r *ReferralRepository) FindByReferrer(ctx context.Context, referrerID uint, start, end time.Time) ([]domain.Referral, error) {
	var referrals []domain.Referral

	query := r.DB.WithContext(ctx).Where("referrer_id = ?", referrerID).Preload("Referred")
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&referrals).Error; err != nil {
		return nil, err
	}

	return referrals, nil
}

// ClaimReward flips a completed, unpaid referral to rewarded in one
// conditional update, so two concurrent claims cannot both win. Returns
// false when no matching row exists (wrong owner, not completed, or already
// claimed).
func (r *ReferralRepository) ClaimReward(ctx context.Context, referralID, referrerID uint) (bool, error) {
	now := time.Now()
	result := r.DB.WithContext(ctx).Model(&domain.Referral{}).
		Where("id = ? AND referrer_id = ? AND status = ? AND reward_paid = ?",
			referralID, referrerID, domain.ReferralCompleted, false).
		Updates(map[string]any{
			"status":         domain.ReferralRewarded,
			"reward_paid":    true,
			"reward_paid_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CompletePending marks the referred user's pending referral as completed
// and records the reward on offer. Returns false when the user has no
// pending referral.
func (r *ReferralRepository) CompletePending(ctx context.Context, referredID uint, rewardAmount float64, rewardCurrency string) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&domain.Referral{}).
		Where("referred_id = ? AND status = ?", referredID, domain.ReferralPending).
		Updates(map[string]any{
			"status":          domain.ReferralCompleted,
			"reward_amount":   rewardAmount,
			"reward_currency": rewardCurrency,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// FindByReferred returns the referral row in which the user is the referred
// party, if any.
func (r *ReferralRepository) FindByReferred(ctx context.Context, referredID uint) (domain.Referral, error) {
	var referral domain.Referral

	err := r.DB.WithContext(ctx).Where("referred_id = ?", referredID).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Referral{}, domain.ErrNotFound("referral not found")
		}
		return domain.Referral{}, err
	}

	return referral, nil
}

func (r *ReferralRepository) FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Referral, error) {
	var referrals []domain.Referral

	query := r.DB.WithContext(ctx)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&referrals).Error; err != nil {
		return nil, err
	}

	return referrals, nil
}
