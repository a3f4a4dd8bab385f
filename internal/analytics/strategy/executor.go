package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/entity"
)

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
	GetType() entity.JobType
}

func marshalReport(report *dto.RunReport) (string, error) {
	b, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}
	return string(b), nil
}
