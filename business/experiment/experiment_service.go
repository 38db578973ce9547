package experiment

import (
	"context"
	"encoding/json"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
)

// ExperimentRepository contract interface
type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	FindByID(ctx context.Context, id uint) (domain.Experiment, error)
	FindAll(ctx context.Context) ([]domain.Experiment, error)
}

// EventRepository reads exposure/conversion facts for result rollups.
type EventRepository interface {
	FindByNames(ctx context.Context, names []string, start, end time.Time) ([]domain.Event, error)
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

type ExperimentService struct {
	experimentRepo ExperimentRepository
	eventRepo      EventRepository
	events         EventTracker
}

func NewExperimentService(experimentRepo ExperimentRepository, eventRepo EventRepository, events EventTracker) *ExperimentService {
	return &ExperimentService{
		experimentRepo: experimentRepo,
		eventRepo:      eventRepo,
		events:         events,
	}
}

// CreateParams carries the experiment definition.
type CreateParams struct {
	Name        string
	Description string
	Variants    []domain.ExperimentVariant
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   uint
}

// ValidateVariants checks that the arms form a usable weighted split:
// at least two variants, every weight positive, weights summing to 100.
func ValidateVariants(variants []domain.ExperimentVariant) error {
	if len(variants) < 2 {
		return domain.ErrValidation("experiment needs at least two variants")
	}

	totalWeight := 0
	seen := make(map[string]bool, len(variants))
	for _, variant := range variants {
		if variant.Name == "" {
			return domain.ErrValidation("variant name is required")
		}
		if seen[variant.Name] {
			return domain.ErrValidation("variant names must be unique")
		}
		seen[variant.Name] = true
		if variant.Weight <= 0 {
			return domain.ErrValidation("variant weight must be positive")
		}
		totalWeight += variant.Weight
	}

	if totalWeight != 100 {
		return domain.ErrValidation("variant weights must sum to 100")
	}

	return nil
}

func (s *ExperimentService) Create(ctx context.Context, params CreateParams) (domain.Experiment, error) {
	if params.Name == "" || params.Description == "" {
		return domain.Experiment{}, domain.ErrValidation("name and description are required")
	}
	if err := ValidateVariants(params.Variants); err != nil {
		return domain.Experiment{}, err
	}
	if !params.EndDate.After(params.StartDate) {
		return domain.Experiment{}, domain.ErrValidation("end date must be after start date")
	}

	variantsJSON, err := json.Marshal(params.Variants)
	if err != nil {
		return domain.Experiment{}, err
	}

	experiment := domain.Experiment{
		Name:        params.Name,
		Description: params.Description,
		Variants:    variantsJSON,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Status:      domain.ExperimentActive,
		CreatedBy:   params.CreatedBy,
		Metadata:    map[string]any{},
	}

	if err := s.experimentRepo.Create(ctx, &experiment); err != nil {
		logger.Error("Failed to create experiment", err)
		return domain.Experiment{}, err
	}

	s.events.TrackQuiet(ctx, params.CreatedBy, domain.EventExperimentCreated, map[string]any{
		"experimentId": experiment.ID,
		"name":         experiment.Name,
	})

	return experiment, nil
}

func (s *ExperimentService) List(ctx context.Context) ([]domain.Experiment, error) {
	return s.experimentRepo.FindAll(ctx)
}

// VariantResult is the per-arm rollup of an experiment.
type VariantResult struct {
	Name           string  `json:"name"`
	Participants   int     `json:"participants"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Results is the full experiment rollup.
type Results struct {
	ExperimentID      uint                    `json:"experiment_id"`
	Name              string                  `json:"name"`
	Status            domain.ExperimentStatus `json:"status"`
	TotalParticipants int                     `json:"total_participants"`
	Variants          []VariantResult         `json:"variants"`
	StartDate         time.Time               `json:"start_date"`
	EndDate           time.Time               `json:"end_date"`
}

// GetResults aggregates exposure and conversion events recorded against the
// experiment into per-variant participation and conversion rates.
func (s *ExperimentService) GetResults(ctx context.Context, id uint) (Results, error) {
	experiment, err := s.experimentRepo.FindByID(ctx, id)
	if err != nil {
		return Results{}, domain.ErrNotFound("experiment not found")
	}

	var variants []domain.ExperimentVariant
	if err := json.Unmarshal(experiment.Variants, &variants); err != nil {
		logger.Error("Failed to decode experiment variants", err)
		return Results{}, err
	}

	events, err := s.eventRepo.FindByNames(ctx,
		[]string{domain.EventExperimentExposure, domain.EventExperimentConversion},
		experiment.StartDate, experiment.EndDate)
	if err != nil {
		logger.Error("Failed to load experiment events", err)
		return Results{}, err
	}

	exposures := map[string]int{}
	conversions := map[string]int{}
	total := 0
	for _, event := range events {
		if matchID, ok := event.Properties["experimentId"].(float64); !ok || uint(matchID) != experiment.ID {
			continue
		}
		variant, _ := event.Properties["variant"].(string)
		switch event.EventName {
		case domain.EventExperimentExposure:
			exposures[variant]++
			total++
		case domain.EventExperimentConversion:
			conversions[variant]++
		}
	}

	results := Results{
		ExperimentID:      experiment.ID,
		Name:              experiment.Name,
		Status:            experiment.Status,
		TotalParticipants: total,
		Variants:          make([]VariantResult, 0, len(variants)),
		StartDate:         experiment.StartDate,
		EndDate:           experiment.EndDate,
	}

	for _, variant := range variants {
		participants := exposures[variant.Name]
		converted := conversions[variant.Name]
		rate := 0.0
		if participants > 0 {
			rate = float64(converted) / float64(participants)
		}
		results.Variants = append(results.Variants, VariantResult{
			Name:           variant.Name,
			Participants:   participants,
			Conversions:    converted,
			ConversionRate: rate,
		})
	}

	return results, nil
}
