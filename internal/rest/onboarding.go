package rest

import (
	"context"
	"net/http"
	"time"

	"payvance/business/onboarding"
	"payvance/domain"
	"payvance/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type OnboardingService interface {
	UpdateStep(ctx context.Context, userID uint, target domain.OnboardingStep, metadata map[string]any) (domain.User, error)
	GetStats(ctx context.Context, start, end time.Time) (onboarding.StepStats, error)
	GetTimeStats(ctx context.Context) (onboarding.TimeStats, error)
}

type OnboardingHandler struct {
	onboardingService OnboardingService
	validator         *validator.Validate
	timeout           time.Duration
}

func NewOnboardingHandler(onboardingService OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		validator:         validator.New(),
		timeout:           10 * time.Second,
	}
}

type UpdateStepRequest struct {
	Step     string         `json:"step" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

func (h *OnboardingHandler) UpdateStep(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	var req UpdateStepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.onboardingService.UpdateStep(ctx, userID, domain.OnboardingStep(req.Step), req.Metadata)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("onboarding step updated", updated))
}

// GetStats is the admin funnel rollup.
func (h *OnboardingHandler) GetStats(c echo.Context) error {
	start, end, err := dateRangeQuery(c)
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.onboardingService.GetStats(ctx, start, end)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(stats))
}

// GetTimeStats reports signup-to-completion durations. Admin only.
func (h *OnboardingHandler) GetTimeStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.onboardingService.GetTimeStats(ctx)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(stats))
}
