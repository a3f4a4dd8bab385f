package strategy

import (
	"context"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

// RelevancyStrategy rescores all ongoing stories.
type RelevancyStrategy struct {
	logger  *logger.Logger
	clock   utils.Clock
	service service.RelevancyService
}

// NewRelevancyStrategy creates a new instance of RelevancyStrategy.
func NewRelevancyStrategy(log *logger.Logger, clock utils.Clock, svc service.RelevancyService) *RelevancyStrategy {
	return &RelevancyStrategy{logger: log, clock: clock, service: svc}
}

// GetType returns the job type this strategy handles.
func (s *RelevancyStrategy) GetType() entity.JobType {
	return entity.JobTypeRelevancy
}

// Execute runs the relevancy job.
func (s *RelevancyStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	s.logger.Info("Executing relevancy job", logger.StringField("job", job.Name))
	report := &dto.RunReport{JobType: job.Type, StartedAt: s.clock.Now()}

	result, err := s.service.Run(ctx)
	if err != nil {
		return "", err
	}

	report.Relevancy = result
	report.FinishedAt = s.clock.Now()
	report.Status = entity.RunStatusCompleted
	if result.Incomplete {
		report.Status = entity.RunStatusIncomplete
	}
	return marshalReport(report)
}
