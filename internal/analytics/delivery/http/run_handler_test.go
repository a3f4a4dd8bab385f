package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "golang-news-analytics/internal/analytics/docs"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	jobs   []entity.Job
	status entity.RunStatus
}

func (f *fakeExecutor) Execute(ctx context.Context, job *entity.Job) (*entity.AnalyticsRun, error) {
	f.jobs = append(f.jobs, *job)
	return &entity.AnalyticsRun{
		ID:          "run-1",
		JobName:     job.Name,
		JobType:     job.Type,
		Status:      f.status,
		StartedAt:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		CompletedAt: sql.NullTime{Time: time.Date(2024, 3, 10, 12, 1, 0, 0, time.UTC), Valid: true},
		Output:      sql.NullString{String: `{"status":"completed"}`, Valid: true},
	}, nil
}

func (f *fakeExecutor) HasStrategy(jobType entity.JobType) bool {
	return jobType == entity.JobTypeKeywordTrend || jobType == entity.JobTypeRelevancy
}

type fakeRunRepo struct {
	runs        []entity.AnalyticsRun
	lastType    entity.JobType
	lastLimit   int
	findByIDHit *entity.AnalyticsRun
}

func (f *fakeRunRepo) Create(ctx context.Context, run *entity.AnalyticsRun) error { return nil }
func (f *fakeRunRepo) Update(ctx context.Context, run *entity.AnalyticsRun) error { return nil }

func (f *fakeRunRepo) FindByID(ctx context.Context, id string) (*entity.AnalyticsRun, error) {
	if f.findByIDHit != nil && f.findByIDHit.ID == id {
		return f.findByIDHit, nil
	}
	return nil, nil
}

func (f *fakeRunRepo) FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.AnalyticsRun, error) {
	f.lastType, f.lastLimit = jobType, limit
	return f.runs, nil
}

func newTestServer(exec *fakeExecutor, runs *fakeRunRepo) *echo.Echo {
	e := echo.New()
	RegisterOps(e, prometheus.NewRegistry())
	NewRunHandler(exec, runs, logger.NewNop()).RegisterRoutes(e.Group("/api/v1/runs"))
	return e
}

func TestTriggerRun(t *testing.T) {
	exec := &fakeExecutor{status: entity.RunStatusCompleted}
	e := newTestServer(exec, &fakeRunRepo{})

	body := `{"timeframes":["daily"],"force_refresh":true,"timeout_sec":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/keyword_trend", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.CompletedAt)

	require.Len(t, exec.jobs, 1)
	job := exec.jobs[0]
	assert.Equal(t, entity.JobTypeKeywordTrend, job.Type)
	assert.Equal(t, 30*time.Second, job.Timeout)
	assert.JSONEq(t, `{"timeframes":["daily"],"force_refresh":true}`, string(job.Payload))
}

func TestTriggerRun_WithoutBody(t *testing.T) {
	exec := &fakeExecutor{status: entity.RunStatusFailed}
	e := newTestServer(exec, &fakeRunRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs/relevancy", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, exec.jobs, 1)
	assert.Empty(t, exec.jobs[0].Payload)
}

func TestTriggerRun_UnknownType(t *testing.T) {
	exec := &fakeExecutor{}
	e := newTestServer(exec, &fakeRunRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs/unknown", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exec.jobs)
}

func TestListRuns(t *testing.T) {
	runs := &fakeRunRepo{runs: []entity.AnalyticsRun{{ID: "r1", JobType: entity.JobTypeRelevancy, Status: entity.RunStatusCompleted}}}
	e := newTestServer(&fakeExecutor{}, runs)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?type=relevancy&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "r1", resp[0].ID)
	assert.Nil(t, resp[0].CompletedAt)
	assert.Equal(t, entity.JobTypeRelevancy, runs.lastType)
	assert.Equal(t, 5, runs.lastLimit)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRun(t *testing.T) {
	runs := &fakeRunRepo{findByIDHit: &entity.AnalyticsRun{ID: "r9", Status: entity.RunStatusIncomplete}}
	e := newTestServer(&fakeExecutor{}, runs)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/id/r9", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"incomplete"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/id/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	e := newTestServer(&fakeExecutor{}, &fakeRunRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	e := newTestServer(&fakeExecutor{}, &fakeRunRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/runs/{type}")
	assert.Contains(t, doc.Paths, "/trends")
}
