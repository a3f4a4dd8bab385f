package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/analytics/service"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/echo-swagger"
)

const defaultRunListLimit = 20

// RunHandler handles on-demand runs and run history.
type RunHandler struct {
	executor service.ExecutorService
	runRepo  repository.RunRepository
	logger   *logger.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(executor service.ExecutorService, runRepo repository.RunRepository, logger *logger.Logger) *RunHandler {
	return &RunHandler{executor: executor, runRepo: runRepo, logger: logger}
}

// RegisterRoutes registers the run routes to the Echo group.
func (h *RunHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:type", h.TriggerRun)
	g.GET("", h.ListRuns)
	g.GET("/id/:id", h.GetRun)
}

// RegisterOps registers the health, metrics and API docs endpoints.
func RegisterOps(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", swagger.WrapHandler)
}

// TriggerRun executes a job synchronously and returns the recorded run.
// @Summary Trigger a run
// @Description Execute one analytics job synchronously and return the recorded run
// @Tags runs
// @Accept  json
// @Produce  json
// @Param   type  path    string          true   "Job type (keyword_trend, entity_trend, story_clustering, relevancy)"
// @Param   run   body    dto.RunRequest  false  "Run options"
// @Success 200 {object} dto.RunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs/{type} [post]
func (h *RunHandler) TriggerRun(c echo.Context) error {
	jobType := entity.JobType(c.Param("type"))
	if !h.executor.HasStrategy(jobType) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown job type"})
	}

	var req dto.RunRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
	}

	job := &entity.Job{
		Name:    "manual-" + string(jobType),
		Type:    jobType,
		Timeout: time.Duration(req.TimeoutSec) * time.Second,
	}
	if len(req.Timeframes) > 0 || req.ForceRefresh {
		payload, err := json.Marshal(dto.TrendJobPayload{Timeframes: req.Timeframes, ForceRefresh: req.ForceRefresh})
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
		job.Payload = payload
	}

	run, err := h.executor.Execute(c.Request().Context(), job)
	if err != nil {
		h.logger.Error("Failed to execute on-demand run", logger.ErrorField(err), logger.StringField("type", string(jobType)))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	status := http.StatusOK
	if run.Status == entity.RunStatusFailed {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, toRunResponse(run))
}

// ListRuns returns the latest runs, optionally filtered by ?type=.
// @Summary List runs
// @Description Get the latest analytics runs
// @Tags runs
// @Produce  json
// @Param   type   query   string  false  "Job type"
// @Param   limit  query   int     false  "Maximum number of runs"
// @Success 200 {array} dto.RunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *RunHandler) ListRuns(c echo.Context) error {
	limit := defaultRunListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}

	runs, err := h.runRepo.FindRecent(c.Request().Context(), entity.JobType(c.QueryParam("type")), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	resp := make([]dto.RunResponse, 0, len(runs))
	for i := range runs {
		resp = append(resp, toRunResponse(&runs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRun returns one run by id.
// @Summary Get a run by ID
// @Tags runs
// @Produce  json
// @Param   id  path    string  true  "Run ID"
// @Success 200 {object} dto.RunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs/id/{id} [get]
func (h *RunHandler) GetRun(c echo.Context) error {
	run, err := h.runRepo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Run not found"})
	}
	return c.JSON(http.StatusOK, toRunResponse(run))
}

func toRunResponse(run *entity.AnalyticsRun) dto.RunResponse {
	resp := dto.RunResponse{
		ID:           run.ID,
		JobName:      run.JobName,
		JobType:      string(run.JobType),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		Output:       run.Output.String,
		ErrorMessage: run.ErrorMessage.String,
	}
	if run.CompletedAt.Valid {
		t := run.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}
