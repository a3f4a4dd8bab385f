package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/common"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/telegram"
	"golang-news-analytics/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnknownJobType is returned when no strategy handles a job's type.
var ErrUnknownJobType = errors.New("no strategy registered for job type")

// JobStrategy executes one job type and returns a JSON run report.
type JobStrategy interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
	GetType() entity.JobType
}

// ExecutorService runs jobs under their time budget and records the outcome.
type ExecutorService interface {
	Execute(ctx context.Context, job *entity.Job) (*entity.AnalyticsRun, error)
	HasStrategy(jobType entity.JobType) bool
}

// NewExecutorService creates a new ExecutorService. redisClient and notifier may be nil.
func NewExecutorService(
	cfg *config.Config,
	log *logger.Logger,
	clock utils.Clock,
	runRepo repository.RunRepository,
	redisClient redis.Cmdable,
	notifier telegram.Notifier,
	metrics *Metrics,
	strategies []JobStrategy,
) ExecutorService {
	strategyMap := make(map[entity.JobType]JobStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}

	return &executorService{
		cfg:         cfg,
		logger:      log,
		clock:       clock,
		runRepo:     runRepo,
		redisClient: redisClient,
		notifier:    notifier,
		metrics:     metrics,
		strategies:  strategyMap,
	}
}

type executorService struct {
	cfg         *config.Config
	logger      *logger.Logger
	clock       utils.Clock
	runRepo     repository.RunRepository
	redisClient redis.Cmdable
	notifier    telegram.Notifier
	metrics     *Metrics
	strategies  map[entity.JobType]JobStrategy
}

func (s *executorService) HasStrategy(jobType entity.JobType) bool {
	_, ok := s.strategies[jobType]
	return ok
}

// Execute runs job with a deadline of job.Timeout (or the configured run timeout) and
// stores the run. A strategy error marks the run failed unless the deadline caused it,
// in which case the run is incomplete.
func (s *executorService) Execute(ctx context.Context, job *entity.Job) (*entity.AnalyticsRun, error) {
	strategy, ok := s.strategies[job.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}

	run := &entity.AnalyticsRun{
		ID:        uuid.NewString(),
		JobName:   job.Name,
		JobType:   job.Type,
		Status:    entity.RunStatusRunning,
		StartedAt: s.clock.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Error("Failed to create run history", logger.ErrorField(err), logger.StringField("job", job.Name))
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Analytics.RunTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := s.logger.With(logger.StringField("job", job.Name), logger.StringField("run_id", run.ID))
	log.Info("Processing job", logger.StringField("type", string(job.Type)), logger.DurationField("timeout", timeout))

	output, err := strategy.Execute(execCtx, job)
	switch {
	case err != nil && errors.Is(execCtx.Err(), context.DeadlineExceeded):
		run.Status = entity.RunStatusIncomplete
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	case err != nil:
		log.Error("Job execution failed", logger.ErrorField(err))
		run.Status = entity.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	default:
		run.Status = reportStatus(output)
	}
	if output != "" {
		run.Output = sql.NullString{String: output, Valid: true}
	}
	run.CompletedAt = sql.NullTime{Time: s.clock.Now(), Valid: true}

	if err := s.runRepo.Update(ctx, run); err != nil {
		log.Error("Failed to update run history", logger.ErrorField(err))
	}
	s.metrics.observeRun(string(job.Type), string(run.Status), run.CompletedAt.Time.Sub(run.StartedAt))
	s.publish(ctx, run)
	if run.Status == entity.RunStatusFailed {
		s.alert(run)
	}

	log.Info("Job execution completed", logger.StringField("status", string(run.Status)))
	return run, nil
}

// reportStatus reads the status a strategy put in its report, defaulting to completed.
func reportStatus(output string) entity.RunStatus {
	var report dto.RunReport
	if err := json.Unmarshal([]byte(output), &report); err != nil || report.Status == "" {
		return entity.RunStatusCompleted
	}
	return report.Status
}

func (s *executorService) publish(ctx context.Context, run *entity.AnalyticsRun) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(dto.RunCompletedEvent{
		RunID:   run.ID,
		JobName: run.JobName,
		JobType: run.JobType,
		Status:  run.Status,
		Output:  run.Output.String,
	})
	if err != nil {
		s.logger.Error("Failed to marshal run event", logger.ErrorField(err))
		return
	}
	err = s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamRunCompleted,
		MaxLen: s.cfg.Redis.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
	if err != nil {
		s.logger.Error("Failed to publish run event", logger.ErrorField(err), logger.StringField("run_id", run.ID))
	}
}

func (s *executorService) alert(run *entity.AnalyticsRun) {
	if s.notifier == nil {
		return
	}
	msg := telegram.FormatRunFailureAlert(run.CompletedAt.Time, run.JobName, run.JobType, run.ErrorMessage.String)
	if err := s.notifier.SendMessage(msg); err != nil {
		s.logger.Error("Failed to send failure alert", logger.ErrorField(err))
	}
}
