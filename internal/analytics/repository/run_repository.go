package repository

import (
	"context"
	"errors"

	"golang-news-analytics/internal/entity"

	"gorm.io/gorm"
)

// RunRepository defines the data operations for analytics run history.
type RunRepository interface {
	Create(ctx context.Context, run *entity.AnalyticsRun) error
	Update(ctx context.Context, run *entity.AnalyticsRun) error
	FindByID(ctx context.Context, id string) (*entity.AnalyticsRun, error)
	FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.AnalyticsRun, error)
}

// NewRunRepository creates a new GORM-based run repository.
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

type runRepository struct {
	db *gorm.DB
}

// Create creates a new run record.
func (r *runRepository) Create(ctx context.Context, run *entity.AnalyticsRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update updates an existing run record.
func (r *runRepository) Update(ctx context.Context, run *entity.AnalyticsRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindByID retrieves a run by its ID.
func (r *runRepository) FindByID(ctx context.Context, id string) (*entity.AnalyticsRun, error) {
	var run entity.AnalyticsRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent returns the latest runs, optionally filtered by job type.
func (r *runRepository) FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.AnalyticsRun, error) {
	var runs []entity.AnalyticsRun
	q := r.db.WithContext(ctx)
	if jobType != "" {
		q = q.Where("job_type = ?", jobType)
	}
	if err := q.Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
