package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

var allTimeframes = []entity.Timeframe{
	entity.TimeframeHourly,
	entity.TimeframeDaily,
	entity.TimeframeWeekly,
	entity.TimeframeMonthly,
}

type trendRunFunc func(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error)

// KeywordTrendStrategy runs keyword scoring for each requested timeframe.
type KeywordTrendStrategy struct {
	logger        *logger.Logger
	service       service.KeywordTrendService
	clock         utils.Clock
	maxConcurrent int
}

// NewKeywordTrendStrategy creates a new instance of KeywordTrendStrategy.
// maxConcurrent bounds how many timeframes run at once; zero or less runs them all together.
func NewKeywordTrendStrategy(log *logger.Logger, clock utils.Clock, svc service.KeywordTrendService, maxConcurrent int) *KeywordTrendStrategy {
	return &KeywordTrendStrategy{logger: log, service: svc, clock: clock, maxConcurrent: maxConcurrent}
}

// GetType returns the job type this strategy handles.
func (s *KeywordTrendStrategy) GetType() entity.JobType {
	return entity.JobTypeKeywordTrend
}

// Execute runs the keyword trend job.
func (s *KeywordTrendStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	return runTimeframes(ctx, s.logger, s.clock, job, s.maxConcurrent, s.service.Run)
}

// EntityTrendStrategy runs entity and category aggregation for each requested timeframe.
type EntityTrendStrategy struct {
	logger        *logger.Logger
	service       service.EntityTrendService
	clock         utils.Clock
	maxConcurrent int
}

// NewEntityTrendStrategy creates a new instance of EntityTrendStrategy.
// maxConcurrent bounds how many timeframes run at once; zero or less runs them all together.
func NewEntityTrendStrategy(log *logger.Logger, clock utils.Clock, svc service.EntityTrendService, maxConcurrent int) *EntityTrendStrategy {
	return &EntityTrendStrategy{logger: log, service: svc, clock: clock, maxConcurrent: maxConcurrent}
}

// GetType returns the job type this strategy handles.
func (s *EntityTrendStrategy) GetType() entity.JobType {
	return entity.JobTypeEntityTrend
}

// Execute runs the entity trend job.
func (s *EntityTrendStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	return runTimeframes(ctx, s.logger, s.clock, job, s.maxConcurrent, s.service.Run)
}

func parseTrendPayload(raw json.RawMessage) ([]entity.Timeframe, bool, error) {
	var payload dto.TrendJobPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}
	if len(payload.Timeframes) == 0 {
		return allTimeframes, payload.ForceRefresh, nil
	}
	timeframes := make([]entity.Timeframe, 0, len(payload.Timeframes))
	for _, name := range payload.Timeframes {
		tf, err := entity.ParseTimeframe(name)
		if err != nil {
			return nil, false, err
		}
		timeframes = append(timeframes, tf)
	}
	return timeframes, payload.ForceRefresh, nil
}

// runTimeframes fans out one pass per timeframe. The run fails only when every
// timeframe failed; a deadline turns it into an incomplete run.
func runTimeframes(ctx context.Context, log *logger.Logger, clock utils.Clock, job *entity.Job, maxConcurrent int, run trendRunFunc) (string, error) {
	timeframes, forceRefresh, err := parseTrendPayload(job.Payload)
	if err != nil {
		return "", err
	}

	log.Info("Executing trend job", logger.StringField("job", job.Name), logger.StringField("type", string(job.Type)),
		logger.Field("timeframes", timeframes), logger.BoolField("force_refresh", forceRefresh))

	report := &dto.RunReport{JobType: job.Type, StartedAt: clock.Now()}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	if maxConcurrent <= 0 {
		maxConcurrent = len(timeframes)
	}
	semaphore := make(chan struct{}, maxConcurrent)

	for _, timeframe := range timeframes {
		wg.Add(1)
		tf := timeframe
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			result, err := run(ctx, tf, forceRefresh)
			if err != nil {
				log.Error("Trend pass failed", logger.ErrorField(err), logger.StringField("timeframe", string(tf)),
					logger.StringField("job_type", string(job.Type)))
				result = &dto.TrendRunResult{Timeframe: tf, ForceRefresh: forceRefresh, Error: err.Error()}
			}
			mu.Lock()
			report.Trends = append(report.Trends, *result)
			if err != nil {
				failures = append(failures, err)
			}
			mu.Unlock()
		})
	}
	wg.Wait()

	sort.Slice(report.Trends, func(i, j int) bool {
		return report.Trends[i].Timeframe.Window() < report.Trends[j].Timeframe.Window()
	})
	report.FinishedAt = clock.Now()

	truncated := false
	for _, t := range report.Trends {
		truncated = truncated || t.Truncated
	}

	switch {
	case len(failures) > 0 && len(failures) == len(timeframes) && ctx.Err() == nil:
		report.Status = entity.RunStatusFailed
		output, _ := marshalReport(report)
		return output, errors.Join(failures...)
	case ctx.Err() != nil, truncated:
		report.Status = entity.RunStatusIncomplete
	default:
		report.Status = entity.RunStatusCompleted
	}
	return marshalReport(report)
}
