package postgres

import (
	"context"
	"errors"

	"payvance/domain"

	"gorm.io/gorm"
)

type ExperimentRepository struct {
	DB *gorm.DB
}

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{
		DB: db,
	}
}

func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	if err := r.DB.WithContext(ctx).Create(experiment).Error; err != nil {
		return err
	}

	return nil
}

func (r *ExperimentRepository) FindByID(ctx context.Context, id uint) (domain.Experiment, error) {
	var experiment domain.Experiment

	err := r.DB.WithContext(ctx).First(&experiment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Experiment{}, domain.ErrNotFound("experiment not found")
		}
		return domain.Experiment{}, err
	}

	return experiment, nil
}

func (r *ExperimentRepository) FindAll(ctx context.Context) ([]domain.Experiment, error) {
	var experiments []domain.Experiment

	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&experiments).Error
	if err != nil {
		return nil, err
	}

	return experiments, nil
}
