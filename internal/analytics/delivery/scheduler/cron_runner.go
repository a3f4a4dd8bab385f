package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronRunner fires configured jobs on their cron schedules. A job that is still running
// when its next tick arrives is skipped rather than stacked.
type CronRunner struct {
	cron     *cron.Cron
	executor service.ExecutorService
	logger   *logger.Logger
	jobs     []entity.Job
	cancel   context.CancelFunc
}

// NewCronRunner creates a CronRunner for jobs.
func NewCronRunner(log *logger.Logger, executor service.ExecutorService, jobs []entity.Job) *CronRunner {
	cl := cronLogger{log: log}
	return &CronRunner{
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLocation(time.UTC),
		),
		executor: executor,
		logger:   log,
		jobs:     jobs,
	}
}

// Start registers every job and starts the scheduler. It returns an error if a schedule
// does not parse or a job type has no strategy.
func (r *CronRunner) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for _, job := range r.jobs {
		if job.Schedule == "" {
			continue
		}
		if !r.executor.HasStrategy(job.Type) {
			cancel()
			return fmt.Errorf("job %q: %w: %s", job.Name, service.ErrUnknownJobType, job.Type)
		}
		j := job
		if _, err := r.cron.AddFunc(j.Schedule, func() {
			if _, err := r.executor.Execute(runCtx, &j); err != nil {
				r.logger.Error("Scheduled job failed", logger.ErrorField(err), logger.StringField("job", j.Name))
			}
		}); err != nil {
			cancel()
			return fmt.Errorf("failed to schedule job %q: %w", j.Name, err)
		}
		r.logger.Info("Job scheduled", logger.StringField("job", j.Name), logger.StringField("schedule", j.Schedule))
	}

	r.cron.Start()
	return nil
}

// Stop stops the scheduler, cancels running jobs and waits for them to return.
func (r *CronRunner) Stop() {
	stopped := r.cron.Stop()
	if r.cancel != nil {
		r.cancel()
	}
	<-stopped.Done()
}

// JobsFromConfig converts configured jobs into entity jobs.
func JobsFromConfig(jobs []config.Job) ([]entity.Job, error) {
	out := make([]entity.Job, 0, len(jobs))
	for _, j := range jobs {
		job := entity.Job{
			Name:     j.Name,
			Type:     entity.JobType(j.Type),
			Schedule: j.Schedule,
			Timeout:  j.Timeout,
		}
		if len(j.Payload) > 0 {
			payload, err := json.Marshal(j.Payload)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal payload of job %q: %w", j.Name, err)
			}
			job.Payload = payload
		}
		out = append(out, job)
	}
	return out, nil
}

// FindJob returns the first configured job of the given type.
func FindJob(jobs []entity.Job, jobType entity.JobType) (entity.Job, bool) {
	for _, j := range jobs {
		if j.Type == jobType {
			return j, true
		}
	}
	return entity.Job{}, false
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
