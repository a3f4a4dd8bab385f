package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(runs *fakeRunRepo, notifier *fakeNotifier, strategies ...JobStrategy) ExecutorService {
	clock := utils.FixedClock{T: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	return NewExecutorService(testConfig(), logger.NewNop(), clock, runs, nil, notifier, nil, strategies)
}

func TestExecutorService_StatusFromReport(t *testing.T) {
	runs := &fakeRunRepo{}
	exec := newTestExecutor(runs, &fakeNotifier{},
		&fakeStrategy{jobType: entity.JobTypeRelevancy, output: `{"status":"incomplete"}`},
		&fakeStrategy{jobType: entity.JobTypeKeywordTrend, output: `{"job_type":"keyword_trend"}`},
	)

	run, err := exec.Execute(context.Background(), &entity.Job{Name: "relevancy", Type: entity.JobTypeRelevancy})
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusIncomplete, run.Status)
	assert.True(t, run.Output.Valid)
	assert.True(t, run.CompletedAt.Valid)

	stored, err := runs.FindByID(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.RunStatusIncomplete, stored.Status)

	run, err = exec.Execute(context.Background(), &entity.Job{Name: "keywords", Type: entity.JobTypeKeywordTrend})
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
}

func TestExecutorService_FailureAlerts(t *testing.T) {
	notifier := &fakeNotifier{}
	exec := newTestExecutor(&fakeRunRepo{}, notifier,
		&fakeStrategy{jobType: entity.JobTypeStoryClustering, err: errFake},
	)

	run, err := exec.Execute(context.Background(), &entity.Job{Name: "stories", Type: entity.JobTypeStoryClustering})
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.Equal(t, errFake.Error(), run.ErrorMessage.String)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "stories")
}

func TestExecutorService_DeadlineMakesRunIncomplete(t *testing.T) {
	notifier := &fakeNotifier{}
	exec := newTestExecutor(&fakeRunRepo{}, notifier,
		&fakeStrategy{jobType: entity.JobTypeEntityTrend, wait: true},
	)

	run, err := exec.Execute(context.Background(), &entity.Job{
		Name:    "entities",
		Type:    entity.JobTypeEntityTrend,
		Timeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusIncomplete, run.Status)
	assert.Empty(t, notifier.messages)
}

func TestExecutorService_UnknownJobType(t *testing.T) {
	exec := newTestExecutor(&fakeRunRepo{}, &fakeNotifier{})

	assert.False(t, exec.HasStrategy(entity.JobTypeRelevancy))
	_, err := exec.Execute(context.Background(), &entity.Job{Type: entity.JobTypeRelevancy})
	assert.True(t, errors.Is(err, ErrUnknownJobType))
}
