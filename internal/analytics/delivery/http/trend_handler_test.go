package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrendRepo struct {
	trends        []entity.Trend
	err           error
	lastTimeframe entity.Timeframe
	lastType      entity.EntityType
	lastLimit     int
}

func (f *fakeTrendRepo) Upsert(ctx context.Context, trends []entity.Trend) error { return nil }

func (f *fakeTrendRepo) ReplaceTimeframe(ctx context.Context, timeframe entity.Timeframe, entityTypes []entity.EntityType, trends []entity.Trend) error {
	return nil
}

func (f *fakeTrendRepo) FindTop(ctx context.Context, timeframe entity.Timeframe, entityType entity.EntityType, limit int) ([]entity.Trend, error) {
	f.lastTimeframe, f.lastType, f.lastLimit = timeframe, entityType, limit
	return f.trends, f.err
}

func newTrendServer(repo *fakeTrendRepo) *echo.Echo {
	e := echo.New()
	NewTrendHandler(repo, logger.NewNop()).RegisterRoutes(e.Group("/api/v1/trends"))
	return e
}

func TestListTrends_Defaults(t *testing.T) {
	repo := &fakeTrendRepo{trends: []entity.Trend{{
		Keyword:    "solar",
		EntityType: entity.TrendTypeKeyword,
		Timeframe:  entity.TimeframeDaily,
		Count:      4,
		Score:      1.25,
		Articles:   []string{"a1", "a2"},
	}}}
	e := newTrendServer(repo)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.TrendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "solar", resp[0].Keyword)
	assert.Equal(t, 2, resp[0].Articles)
	assert.Equal(t, entity.TimeframeDaily, repo.lastTimeframe)
	assert.Equal(t, entity.TrendTypeKeyword, repo.lastType)
	assert.Equal(t, defaultTrendListLimit, repo.lastLimit)
}

func TestListTrends_Filters(t *testing.T) {
	repo := &fakeTrendRepo{}
	e := newTrendServer(repo)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends?timeframe=weekly&type=organization&limit=500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, entity.TimeframeWeekly, repo.lastTimeframe)
	assert.Equal(t, entity.EntityTypeOrganization, repo.lastType)
	assert.Equal(t, maxTrendListLimit, repo.lastLimit)
}

func TestListTrends_BadRequest(t *testing.T) {
	e := newTrendServer(&fakeTrendRepo{})

	for _, target := range []string{
		"/api/v1/trends?timeframe=yearly",
		"/api/v1/trends?type=other",
		"/api/v1/trends?limit=0",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestListTrends_StoreError(t *testing.T) {
	e := newTrendServer(&fakeTrendRepo{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
