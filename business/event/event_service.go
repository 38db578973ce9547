package event

import (
	"context"
	"time"

	"payvance/domain"
	"payvance/internal/repository/postgres"
	"payvance/pkg/logger"
)

// EventRepository contract interface
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	FindByUser(ctx context.Context, userID uint, q postgres.EventQuery) ([]domain.Event, int64, error)
	FindByUserAndName(ctx context.Context, userID uint, eventName string, start, end time.Time) ([]domain.Event, error)
}

type EventService struct {
	eventRepo EventRepository
}

func NewEventService(eventRepo EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// Track appends one fact to the analytics log. Tracking never fails a
// caller's business operation: services call this after their own writes
// and only log on error.
func (s *EventService) Track(ctx context.Context, userID uint, eventName string, properties, metadata map[string]any) (domain.Event, error) {
	if eventName == "" {
		return domain.Event{}, domain.ErrValidation("event name is required")
	}

	if properties == nil {
		properties = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := domain.Event{
		UserID:     userID,
		EventName:  eventName,
		Properties: properties,
		Metadata:   metadata,
		Timestamp:  time.Now(),
	}

	if err := s.eventRepo.Create(ctx, &event); err != nil {
		logger.Error("Failed to create event", err)
		return domain.Event{}, err
	}

	return event, nil
}

// TrackQuiet records an event and swallows the error after logging it.
// Used on side-effect paths where analytics must not fail the operation.
func (s *EventService) TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any) {
	if _, err := s.Track(ctx, userID, eventName, properties, nil); err != nil {
		logger.Warn("Event tracking failed", "event", eventName, "user_id", userID, "error", err)
	}
}

// ListOptions mirror the query parameters of the events listing endpoint.
type ListOptions struct {
	EventName string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

func (s *EventService) GetUserEvents(ctx context.Context, userID uint, opts ListOptions) ([]domain.Event, int64, error) {
	events, total, err := s.eventRepo.FindByUser(ctx, userID, postgres.EventQuery{
		EventName: opts.EventName,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list user events", err)
		return nil, 0, err
	}

	return events, total, nil
}

// Stats summarizes one event name for a user inside a time window.
type Stats struct {
	Total           int        `json:"total"`
	FirstOccurrence *time.Time `json:"first_occurrence,omitempty"`
	LastOccurrence  *time.Time `json:"last_occurrence,omitempty"`
}

func (s *EventService) GetEventStats(ctx context.Context, userID uint, eventName string, start, end time.Time) (Stats, error) {
	if eventName == "" || start.IsZero() || end.IsZero() {
		return Stats{}, domain.ErrValidation("missing required parameters")
	}

	events, err := s.eventRepo.FindByUserAndName(ctx, userID, eventName, start, end)
	if err != nil {
		logger.Error("Failed to get event stats", err)
		return Stats{}, err
	}

	stats := Stats{Total: len(events)}
	if len(events) > 0 {
		first := events[0].CreatedAt
		last := events[len(events)-1].CreatedAt
		stats.FirstOccurrence = &first
		stats.LastOccurrence = &last
	}

	return stats, nil
}
