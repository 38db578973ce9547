package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"payvance/business/event"
	"payvance/domain"
	"payvance/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type EventService interface {
	Track(ctx context.Context, userID uint, eventName string, properties, metadata map[string]any) (domain.Event, error)
	GetUserEvents(ctx context.Context, userID uint, opts event.ListOptions) ([]domain.Event, int64, error)
	GetEventStats(ctx context.Context, userID uint, eventName string, start, end time.Time) (event.Stats, error)
}

type EventHandler struct {
	eventService EventService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type TrackEventRequest struct {
	EventName  string         `json:"event_name" validate:"required"`
	Properties map[string]any `json:"properties"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *EventHandler) Track(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	var req TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	// Request provenance is stamped server-side; clients cannot spoof it.
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["ip"] = c.RealIP()
	metadata["userAgent"] = c.Request().UserAgent()

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tracked, err := h.eventService.Track(ctx, userID, req.EventName, req.Properties, metadata)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, response.Success(tracked))
}

func (h *EventHandler) ListUserEvents(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	opts := event.ListOptions{
		EventName: c.QueryParam("event_name"),
	}

	if raw := c.QueryParam("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.Error("invalid start_date, expected YYYY-MM-DD"))
		}
		opts.StartDate = parsed
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.Error("invalid end_date, expected YYYY-MM-DD"))
		}
		opts.EndDate = parsed.AddDate(0, 0, 1)
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Limit = parsed
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Offset = parsed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, total, err := h.eventService.GetUserEvents(ctx, userID, opts)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(echo.Map{
		"events": events,
		"total":  total,
	}))
}

func (h *EventHandler) GetStats(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	eventName := c.QueryParam("event_name")
	startRaw := c.QueryParam("start_date")
	endRaw := c.QueryParam("end_date")
	if eventName == "" || startRaw == "" || endRaw == "" {
		return c.JSON(http.StatusBadRequest, response.Error("event_name, start_date and end_date are required"))
	}

	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.Error("invalid start_date, expected YYYY-MM-DD"))
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.Error("invalid end_date, expected YYYY-MM-DD"))
	}
	end = end.AddDate(0, 0, 1)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.eventService.GetEventStats(ctx, userID, eventName, start, end)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(stats))
}
