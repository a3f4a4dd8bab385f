package strategy

import (
	"context"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

// StoryClusteringStrategy runs one story clustering pass.
type StoryClusteringStrategy struct {
	logger  *logger.Logger
	clock   utils.Clock
	service service.StoryClusteringService
}

// NewStoryClusteringStrategy creates a new instance of StoryClusteringStrategy.
func NewStoryClusteringStrategy(log *logger.Logger, clock utils.Clock, svc service.StoryClusteringService) *StoryClusteringStrategy {
	return &StoryClusteringStrategy{logger: log, clock: clock, service: svc}
}

// GetType returns the job type this strategy handles.
func (s *StoryClusteringStrategy) GetType() entity.JobType {
	return entity.JobTypeStoryClustering
}

// Execute runs the story clustering job.
func (s *StoryClusteringStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	s.logger.Info("Executing story clustering job", logger.StringField("job", job.Name))
	report := &dto.RunReport{JobType: job.Type, StartedAt: s.clock.Now()}

	result, err := s.service.Run(ctx)
	if err != nil {
		return "", err
	}

	report.Stories = result
	report.FinishedAt = s.clock.Now()
	report.Status = entity.RunStatusCompleted
	if result.Incomplete || result.Truncated || ctx.Err() != nil {
		report.Status = entity.RunStatusIncomplete
	}
	return marshalReport(report)
}
