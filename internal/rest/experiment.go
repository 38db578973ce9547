package rest

import (
	"context"
	"net/http"
	"time"

	"payvance/business/experiment"
	"payvance/domain"
	"payvance/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ExperimentService interface {
	Create(ctx context.Context, params experiment.CreateParams) (domain.Experiment, error)
	List(ctx context.Context) ([]domain.Experiment, error)
	GetResults(ctx context.Context, id uint) (experiment.Results, error)
}

type ExperimentHandler struct {
	experimentService ExperimentService
	validator         *validator.Validate
	timeout           time.Duration
}

func NewExperimentHandler(experimentService ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		experimentService: experimentService,
		validator:         validator.New(),
		timeout:           10 * time.Second,
	}
}

type VariantRequest struct {
	Name   string         `json:"name" validate:"required"`
	Weight int            `json:"weight" validate:"required"`
	Config map[string]any `json:"config"`
}

type CreateExperimentRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Variants    []VariantRequest `json:"variants" validate:"required,min=2,dive"`
	StartDate   time.Time        `json:"start_date" validate:"required"`
	EndDate     time.Time        `json:"end_date" validate:"required"`
}

// Create defines a new experiment. Admin and marketer roles.
func (h *ExperimentHandler) Create(c echo.Context) error {
	actorID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	var req CreateExperimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	variants := make([]domain.ExperimentVariant, 0, len(req.Variants))
	for _, v := range req.Variants {
		variants = append(variants, domain.ExperimentVariant{
			Name:   v.Name,
			Weight: v.Weight,
			Config: v.Config,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.experimentService.Create(ctx, experiment.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Variants:    variants,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   actorID,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, response.Success(created))
}

func (h *ExperimentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	experiments, err := h.experimentService.List(ctx)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(experiments))
}

func (h *ExperimentHandler) GetResults(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.experimentService.GetResults(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(results))
}
