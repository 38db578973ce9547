package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payvance/business/event"
	"payvance/domain"

	"github.com/labstack/echo/v4"
)

type stubEventService struct {
	userID     uint
	eventName  string
	properties map[string]any
	metadata   map[string]any
}

func (s *stubEventService) Track(ctx context.Context, userID uint, eventName string, properties, metadata map[string]any) (domain.Event, error) {
	s.userID = userID
	s.eventName = eventName
	s.properties = properties
	s.metadata = metadata
	return domain.Event{ID: 1, UserID: userID, EventName: eventName}, nil
}

func (s *stubEventService) GetUserEvents(ctx context.Context, userID uint, opts event.ListOptions) ([]domain.Event, int64, error) {
	return nil, 0, nil
}

func (s *stubEventService) GetEventStats(ctx context.Context, userID uint, eventName string, start, end time.Time) (event.Stats, error) {
	return event.Stats{}, nil
}

func TestTrackStampsRequestProvenance(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/track", strings.NewReader(`{"event_name":"page_view","metadata":{"screen":"home"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "payvance-app/1.4.2")
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.Set("user_id", uint(1))

	svc := &stubEventService{}
	handler := NewEventHandler(svc)

	if err := handler.Track(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if svc.metadata == nil {
		t.Fatal("metadata never reached the service")
	}
	if svc.metadata["ip"] != "203.0.113.7" {
		t.Fatalf("expected stamped ip, got %v", svc.metadata["ip"])
	}
	if svc.metadata["userAgent"] != "payvance-app/1.4.2" {
		t.Fatalf("expected stamped user agent, got %v", svc.metadata["userAgent"])
	}
	// Client-supplied metadata survives the merge.
	if svc.metadata["screen"] != "home" {
		t.Fatalf("expected client metadata preserved, got %v", svc.metadata["screen"])
	}
}

func TestTrackStampsProvenanceWithoutClientMetadata(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/track", strings.NewReader(`{"event_name":"page_view"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "payvance-app/1.4.2")
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.Set("user_id", uint(1))

	svc := &stubEventService{}
	handler := NewEventHandler(svc)

	if err := handler.Track(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.metadata == nil || svc.metadata["userAgent"] != "payvance-app/1.4.2" {
		t.Fatalf("expected provenance stamped on a nil metadata body, got %v", svc.metadata)
	}
}
