package postgres

import (
	"context"
	"errors"
	"time"

	"payvance/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, err
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, err
	}

	return user, nil
}

func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ? OR phone = ?", email, phone).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, err
	}

	return user, nil
}

func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, err
	}

	return user, nil
}

// UpdateProfile writes only the caller-editable profile columns.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	result := r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).
		Select("first_name", "last_name", "phone", "updated_at").
		Updates(map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound("user not found")
	}

	return nil
}

// TouchLogin stamps the device fingerprint and last-active time at login.
func (r *UserRepository) TouchLogin(ctx context.Context, id uint, deviceFingerprint string) error {
	return r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"device_fingerprint": deviceFingerprint,
			"last_active":        time.Now(),
		}).Error
}

func (r *UserRepository) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	result := r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound("user not found")
	}

	return nil
}

// AdvanceOnboardingStep moves the user forward in a single conditional
// update: the write lands only if the row still holds the step the caller
// read. Returns false when another writer got there first or the user is
// gone.
func (r *UserRepository) AdvanceOnboardingStep(ctx context.Context, id uint, from, to domain.OnboardingStep) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND onboarding_step = ?", id, from).
		Update("onboarding_step", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// FindInactiveSince returns active users whose last activity predates the
// cutoff. Feeds the daily inactivity-nudge sweep.
func (r *UserRepository) FindInactiveSince(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	var users []domain.User

	err := r.DB.WithContext(ctx).
		Where("last_active < ? AND status = ?", cutoff, domain.UserStatusActive).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// FindPendingKyc returns active users who registered before the cutoff and
// have not finished onboarding. Feeds the daily KYC-reminder sweep.
func (r *UserRepository) FindPendingKyc(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	var users []domain.User

	err := r.DB.WithContext(ctx).
		Where("onboarding_step <> ? AND created_at < ? AND status = ?",
			domain.StepKycComplete, cutoff, domain.UserStatusActive).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// FindAllInRange returns users created inside the optional time window.
// Zero bounds mean unbounded.
func (r *UserRepository) FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.User, error) {
	var users []domain.User

	query := r.DB.WithContext(ctx)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// FindCompletedOnboarding returns users who reached the final step.
func (r *UserRepository) FindCompletedOnboarding(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := r.DB.WithContext(ctx).
		Where("onboarding_step = ?", domain.StepKycComplete).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
