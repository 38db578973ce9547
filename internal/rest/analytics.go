package rest

import (
	"context"
	"net/http"
	"time"

	"payvance/business/analytics"
	"payvance/pkg/response"

	"github.com/labstack/echo/v4"
)

type AnalyticsService interface {
	Onboarding(ctx context.Context, start, end time.Time) (analytics.OnboardingReport, error)
	Referrals(ctx context.Context, start, end time.Time) (analytics.ReferralReport, error)
	Events(ctx context.Context, start, end time.Time) (analytics.EventReport, error)
	Notifications(ctx context.Context, start, end time.Time) (analytics.NotificationReport, error)
	Retention(ctx context.Context, start, end time.Time) (analytics.RetentionReport, error)
}

// AnalyticsHandler serves the admin reporting endpoints. Every route is
// behind the admin role gate.
type AnalyticsHandler struct {
	analyticsService AnalyticsService
	timeout          time.Duration
}

func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		timeout:          10 * time.Second,
	}
}

func (h *AnalyticsHandler) report(c echo.Context, load func(ctx context.Context, start, end time.Time) (any, error)) error {
	start, end, err := dateRangeQuery(c)
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	data, err := load(ctx, start, end)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(data))
}

func (h *AnalyticsHandler) Onboarding(c echo.Context) error {
	return h.report(c, func(ctx context.Context, start, end time.Time) (any, error) {
		return h.analyticsService.Onboarding(ctx, start, end)
	})
}

func (h *AnalyticsHandler) Referrals(c echo.Context) error {
	return h.report(c, func(ctx context.Context, start, end time.Time) (any, error) {
		return h.analyticsService.Referrals(ctx, start, end)
	})
}

func (h *AnalyticsHandler) Events(c echo.Context) error {
	return h.report(c, func(ctx context.Context, start, end time.Time) (any, error) {
		return h.analyticsService.Events(ctx, start, end)
	})
}

func (h *AnalyticsHandler) Notifications(c echo.Context) error {
	return h.report(c, func(ctx context.Context, start, end time.Time) (any, error) {
		return h.analyticsService.Notifications(ctx, start, end)
	})
}

func (h *AnalyticsHandler) Retention(c echo.Context) error {
	return h.report(c, func(ctx context.Context, start, end time.Time) (any, error) {
		return h.analyticsService.Retention(ctx, start, end)
	})
}
