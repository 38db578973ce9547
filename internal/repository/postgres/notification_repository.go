package postgres

import (
	"context"
	"errors"
	"time"

	"payvance/domain"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		DB: db,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if err := r.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return err
	}

	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint) (domain.Notification, error) {
	var notification domain.Notification

	err := r.DB.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Notification{}, domain.ErrNotFound("notification not found")
		}
		return domain.Notification{}, err
	}

	return notification, nil
}

// NotificationQuery narrows a user's notification listing.
type NotificationQuery struct {
	Type    domain.NotificationType
	Channel domain.NotificationChannel
	Status  domain.NotificationStatus
	Limit   int
	Offset  int
}

func (r *NotificationRepository) FindByUser(ctx context.Context, userID uint, q NotificationQuery) ([]domain.Notification, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)

	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.Channel != "" {
		query = query.Where("channel = ?", q.Channel)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var notifications []domain.Notification
	err := query.Order("created_at DESC").Limit(limit).Offset(q.Offset).Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// UpdateDispatchOutcome persists the result of a delivery attempt: the new
// status plus the merged metadata (sentAt or error/retryCount).
func (r *NotificationRepository) UpdateDispatchOutcome(ctx context.Context, notification *domain.Notification) error {
	result := r.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", notification.ID).
		Updates(map[string]any{
			"status":   notification.Status,
			"metadata": notification.Metadata,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound("notification not found")
	}

	return nil
}

// MarkRead flips an owned notification to read in one conditional update.
// Returns false when the notification does not exist or belongs to someone
// else.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"status": domain.NotificationRead,
			"read":   true,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *NotificationRepository) FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Notification, error) {
	var notifications []domain.Notification

	query := r.DB.WithContext(ctx)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}
