package strategy

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ service.JobStrategy = (*KeywordTrendStrategy)(nil)
	_ service.JobStrategy = (*EntityTrendStrategy)(nil)
	_ service.JobStrategy = (*StoryClusteringStrategy)(nil)
	_ service.JobStrategy = (*RelevancyStrategy)(nil)
)

var testClock = utils.FixedClock{T: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}

type fakeTrendService struct {
	mu        sync.Mutex
	calls     map[entity.Timeframe]bool
	failing   map[entity.Timeframe]bool
	truncated map[entity.Timeframe]bool
}

func (f *fakeTrendService) Run(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[entity.Timeframe]bool)
	}
	f.calls[timeframe] = forceRefresh
	if f.failing[timeframe] {
		return nil, assert.AnError
	}
	return &dto.TrendRunResult{
		Timeframe:     timeframe,
		TrendsWritten: 3,
		ForceRefresh:  forceRefresh,
		Truncated:     f.truncated[timeframe],
	}, nil
}

func decodeReport(t *testing.T, output string) dto.RunReport {
	t.Helper()
	var report dto.RunReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	return report
}

func TestKeywordTrendStrategy_DefaultsToAllTimeframes(t *testing.T) {
	svc := &fakeTrendService{}
	s := NewKeywordTrendStrategy(logger.NewNop(), testClock, svc, 2)

	output, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeKeywordTrend})
	require.NoError(t, err)

	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusCompleted, report.Status)
	require.Len(t, report.Trends, 4)
	assert.Equal(t, entity.TimeframeHourly, report.Trends[0].Timeframe)
	assert.Equal(t, entity.TimeframeMonthly, report.Trends[3].Timeframe)
	assert.Len(t, svc.calls, 4)
}

func TestEntityTrendStrategy_Payload(t *testing.T) {
	svc := &fakeTrendService{}
	s := NewEntityTrendStrategy(logger.NewNop(), testClock, svc, 0)

	job := &entity.Job{
		Type:    entity.JobTypeEntityTrend,
		Payload: json.RawMessage(`{"timeframes":["weekly"],"force_refresh":true}`),
	}
	output, err := s.Execute(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, map[entity.Timeframe]bool{entity.TimeframeWeekly: true}, svc.calls)
	report := decodeReport(t, output)
	require.Len(t, report.Trends, 1)
	assert.True(t, report.Trends[0].ForceRefresh)
}

func TestTrendStrategy_InvalidPayload(t *testing.T) {
	s := NewKeywordTrendStrategy(logger.NewNop(), testClock, &fakeTrendService{}, 1)

	_, err := s.Execute(context.Background(), &entity.Job{Payload: json.RawMessage(`{"timeframes":["yearly"]}`)})
	assert.Error(t, err)

	_, err = s.Execute(context.Background(), &entity.Job{Payload: json.RawMessage(`not json`)})
	assert.Error(t, err)
}

func TestTrendStrategy_PartialAndTotalFailure(t *testing.T) {
	partial := &fakeTrendService{failing: map[entity.Timeframe]bool{entity.TimeframeDaily: true}}
	output, err := NewKeywordTrendStrategy(logger.NewNop(), testClock, partial, 4).
		Execute(context.Background(), &entity.Job{Type: entity.JobTypeKeywordTrend})
	require.NoError(t, err)
	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusCompleted, report.Status)
	assert.Equal(t, assert.AnError.Error(), report.Trends[1].Error)

	total := &fakeTrendService{failing: map[entity.Timeframe]bool{entity.TimeframeHourly: true}}
	_, err = NewKeywordTrendStrategy(logger.NewNop(), testClock, total, 4).Execute(context.Background(), &entity.Job{
		Type:    entity.JobTypeKeywordTrend,
		Payload: json.RawMessage(`{"timeframes":["hourly"]}`),
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTrendStrategy_TruncatedWindowIsIncomplete(t *testing.T) {
	svc := &fakeTrendService{truncated: map[entity.Timeframe]bool{entity.TimeframeWeekly: true}}
	output, err := NewKeywordTrendStrategy(logger.NewNop(), testClock, svc, 4).
		Execute(context.Background(), &entity.Job{Type: entity.JobTypeKeywordTrend})
	require.NoError(t, err)

	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusIncomplete, report.Status)
	require.Len(t, report.Trends, 4)
	assert.True(t, report.Trends[2].Truncated)
	assert.False(t, report.Trends[0].Truncated)
}

type fakeStoryService struct {
	result *dto.StoryRunResult
	err    error
}

func (f *fakeStoryService) Run(ctx context.Context) (*dto.StoryRunResult, error) {
	return f.result, f.err
}

type fakeRelevancyService struct {
	result *dto.RelevancyRunResult
}

func (f *fakeRelevancyService) Run(ctx context.Context) (*dto.RelevancyRunResult, error) {
	return f.result, nil
}

func TestStoryClusteringStrategy_Execute(t *testing.T) {
	s := NewStoryClusteringStrategy(logger.NewNop(), testClock, &fakeStoryService{
		result: &dto.StoryRunResult{StoriesCreated: []string{"s1"}, Incomplete: true},
	})

	output, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeStoryClustering})
	require.NoError(t, err)
	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusIncomplete, report.Status)
	require.NotNil(t, report.Stories)
	assert.Equal(t, []string{"s1"}, report.Stories.StoriesCreated)

	_, err = NewStoryClusteringStrategy(logger.NewNop(), testClock, &fakeStoryService{err: assert.AnError}).
		Execute(context.Background(), &entity.Job{Type: entity.JobTypeStoryClustering})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestStoryClusteringStrategy_TruncatedWindowIsIncomplete(t *testing.T) {
	s := NewStoryClusteringStrategy(logger.NewNop(), testClock, &fakeStoryService{
		result: &dto.StoryRunResult{ArticlesScanned: 500, Truncated: true},
	})

	output, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeStoryClustering})
	require.NoError(t, err)
	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusIncomplete, report.Status)
	require.NotNil(t, report.Stories)
	assert.True(t, report.Stories.Truncated)

	output, err = NewStoryClusteringStrategy(logger.NewNop(), testClock, &fakeStoryService{
		result: &dto.StoryRunResult{ArticlesScanned: 500},
	}).Execute(context.Background(), &entity.Job{Type: entity.JobTypeStoryClustering})
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, decodeReport(t, output).Status)
}

func TestRelevancyStrategy_Execute(t *testing.T) {
	s := NewRelevancyStrategy(logger.NewNop(), testClock, &fakeRelevancyService{
		result: &dto.RelevancyRunResult{StoriesScored: 7},
	})

	output, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeRelevancy})
	require.NoError(t, err)
	report := decodeReport(t, output)
	assert.Equal(t, entity.RunStatusCompleted, report.Status)
	assert.Equal(t, 7, report.Relevancy.StoriesScored)
}
