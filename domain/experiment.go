package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentActive    ExperimentStatus = "active"
	ExperimentPaused    ExperimentStatus = "paused"
	ExperimentCompleted ExperimentStatus = "completed"
)

// ExperimentVariant is one weighted arm of an A/B test. Weights are
// percentages and must sum to 100 across an experiment.
type ExperimentVariant struct {
	Name   string         `json:"name"`
	Weight int            `json:"weight"`
	Config map[string]any `json:"config,omitempty"`
}

type Experiment struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"column:name;not null" json:"name"`
	Description string            `gorm:"column:description;type:text;not null" json:"description"`
	Variants    datatypes.JSON    `gorm:"column:variants;not null" json:"variants"`
	StartDate   time.Time         `gorm:"column:start_date;not null;index" json:"start_date"`
	EndDate     time.Time         `gorm:"column:end_date;not null;index" json:"end_date"`
	Status      ExperimentStatus  `gorm:"column:status;default:draft;index" json:"status"`
	CreatedBy   uint              `gorm:"column:created_by;not null;index" json:"created_by"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Experiment) TableName() string {
	return "experiments"
}
