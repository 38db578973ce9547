package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payvance/business/experiment"
	"payvance/domain"
	"payvance/internal/middleware"
	"payvance/internal/rest"

	"github.com/labstack/echo/v4"
)

type stubExperimentService struct{}

func (s *stubExperimentService) Create(ctx context.Context, params experiment.CreateParams) (domain.Experiment, error) {
	return domain.Experiment{ID: 1, Name: params.Name}, nil
}

func (s *stubExperimentService) List(ctx context.Context) ([]domain.Experiment, error) {
	return []domain.Experiment{}, nil
}

func (s *stubExperimentService) GetResults(ctx context.Context, id uint) (experiment.Results, error) {
	return experiment.Results{ExperimentID: id}, nil
}

func authAs(userID uint, role domain.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", userID)
			c.Set("role", string(role))
			return next(c)
		}
	}
}

const createExperimentBody = `{
	"name": "onboarding-copy",
	"description": "Test two welcome headlines",
	"variants": [
		{"name": "control", "weight": 50},
		{"name": "treatment", "weight": 50}
	],
	"start_date": "2026-01-01T00:00:00Z",
	"end_date": "2026-02-01T00:00:00Z"
}`

func newExperimentRouter(role domain.UserRole) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler

	api := e.Group("/api/v1")
	handler := rest.NewExperimentHandler(&stubExperimentService{})
	marketerOrAdmin := middleware.RequireRoles(domain.RoleAdmin, domain.RoleMarketer)

	SetupExperimentRoutes(api, handler, authAs(1, role), marketerOrAdmin)
	return e
}

func TestExperimentReadsOpenToAnyAuthenticatedRole(t *testing.T) {
	e := newExperimentRouter(domain.RoleUser)

	for _, path := range []string{"/api/v1/experiments", "/api/v1/experiments/1/results"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s as plain user: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestExperimentCreateGatedToMarketerAndAdmin(t *testing.T) {
	cases := []struct {
		role domain.UserRole
		want int
	}{
		{domain.RoleUser, http.StatusForbidden},
		{domain.RoleAnalyst, http.StatusForbidden},
		{domain.RoleMarketer, http.StatusCreated},
		{domain.RoleAdmin, http.StatusCreated},
	}

	for _, tc := range cases {
		e := newExperimentRouter(tc.role)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/experiments", strings.NewReader(createExperimentBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("POST /experiments as %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}
