package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"payvance/domain"
	"payvance/internal/repository/postgres"
)

type stubEventRepo struct {
	created   []domain.Event
	createErr error
	byName    []domain.Event
}

func (s *stubEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *e)
	return nil
}

func (s *stubEventRepo) FindByUser(ctx context.Context, userID uint, q postgres.EventQuery) ([]domain.Event, int64, error) {
	return s.created, int64(len(s.created)), nil
}

func (s *stubEventRepo) FindByUserAndName(ctx context.Context, userID uint, eventName string, start, end time.Time) ([]domain.Event, error) {
	return s.byName, nil
}

func TestTrackRequiresEventName(t *testing.T) {
	svc := NewEventService(&stubEventRepo{})

	_, err := svc.Track(context.Background(), 1, "", nil, nil)
	if err == nil {
		t.Fatal("expected validation error for empty event name")
	}
}

func TestTrackDefaultsMapsAndStampsTime(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewEventService(repo)

	tracked, err := svc.Track(context.Background(), 1, "custom_action", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracked.Properties == nil || tracked.Metadata == nil {
		t.Fatal("nil maps must be defaulted")
	}
	if tracked.Timestamp.IsZero() {
		t.Fatal("timestamp must be stamped")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted event, got %d", len(repo.created))
	}
}

func TestTrackQuietSwallowsErrors(t *testing.T) {
	repo := &stubEventRepo{createErr: errors.New("db down")}
	svc := NewEventService(repo)

	// Must not panic and must not propagate.
	svc.TrackQuiet(context.Background(), 1, "custom_action", nil)
}

func TestGetEventStatsRequiresNameAndWindow(t *testing.T) {
	svc := NewEventService(&stubEventRepo{})

	now := time.Now()
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"", now.AddDate(0, 0, -7), now},
		{"user_logged_in", time.Time{}, now},
		{"user_logged_in", now.AddDate(0, 0, -7), time.Time{}},
	}

	for i, c := range cases {
		if _, err := svc.GetEventStats(context.Background(), 1, c.name, c.start, c.end); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestGetEventStatsReportsOccurrenceWindow(t *testing.T) {
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	repo := &stubEventRepo{byName: []domain.Event{
		{EventName: "user_logged_in", CreatedAt: first},
		{EventName: "user_logged_in", CreatedAt: first.Add(24 * time.Hour)},
		{EventName: "user_logged_in", CreatedAt: last},
	}}
	svc := NewEventService(repo)

	stats, err := svc.GetEventStats(context.Background(), 1, "user_logged_in", first.AddDate(0, 0, -1), last.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected 3 events, got %d", stats.Total)
	}
	if stats.FirstOccurrence == nil || !stats.FirstOccurrence.Equal(first) {
		t.Fatalf("unexpected first occurrence: %v", stats.FirstOccurrence)
	}
	if stats.LastOccurrence == nil || !stats.LastOccurrence.Equal(last) {
		t.Fatalf("unexpected last occurrence: %v", stats.LastOccurrence)
	}
}
