package postgres

import (
	"context"
	"time"

	"payvance/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return err
	}

	return nil
}

// EventQuery narrows a user's event listing.
type EventQuery struct {
	EventName string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// FindByUser returns one page of the user's events, newest first, plus the
// total matching count.
func (r *EventRepository) FindByUser(ctx context.Context, userID uint, q EventQuery) ([]domain.Event, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Event{}).Where("user_id = ?", userID)

	if q.EventName != "" {
		query = query.Where("event_name = ?", q.EventName)
	}
	if !q.StartDate.IsZero() {
		query = query.Where("created_at >= ?", q.StartDate)
	}
	if !q.EndDate.IsZero() {
		query = query.Where("created_at <= ?", q.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	var events []domain.Event
	err := query.Order("created_at DESC").Limit(limit).Offset(q.Offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// FindByUserAndName returns a user's occurrences of one event inside the
// window, oldest first.
func (r *EventRepository) FindByUserAndName(ctx context.Context, userID uint, eventName string, start, end time.Time) ([]domain.Event, error) {
	var events []domain.Event

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND event_name = ? AND created_at BETWEEN ? AND ?",
			userID, eventName, start, end).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) FindAllInRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	var events []domain.Event

	query := r.DB.WithContext(ctx)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// FindByNames returns all events matching any of the given names, bounded
// by the optional window. Used for experiment rollups.
func (r *EventRepository) FindByNames(ctx context.Context, names []string, start, end time.Time) ([]domain.Event, error) {
	var events []domain.Event

	query := r.DB.WithContext(ctx).Where("event_name IN ?", names)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
