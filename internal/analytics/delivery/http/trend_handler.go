package http

import (
	"net/http"
	"strconv"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	defaultTrendListLimit = 20
	maxTrendListLimit     = 100
)

// TrendHandler exposes the current trend tables for inspection.
type TrendHandler struct {
	trendRepo repository.TrendRepository
	logger    *logger.Logger
}

// NewTrendHandler creates a new TrendHandler.
func NewTrendHandler(trendRepo repository.TrendRepository, logger *logger.Logger) *TrendHandler {
	return &TrendHandler{trendRepo: trendRepo, logger: logger}
}

// RegisterRoutes registers the trend routes to the Echo group.
func (h *TrendHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListTrends)
}

// ListTrends returns the top trends for ?timeframe= (default daily) and ?type= (default keyword).
// @Summary List trends
// @Description Get the top stored trends of one type for a timeframe
// @Tags trends
// @Produce  json
// @Param   timeframe  query   string  false  "hourly, daily, weekly or monthly"
// @Param   type       query   string  false  "keyword, category or an entity type"
// @Param   limit      query   int     false  "Maximum number of trends (capped at 100)"
// @Success 200 {array} dto.TrendResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /trends [get]
func (h *TrendHandler) ListTrends(c echo.Context) error {
	timeframe := entity.TimeframeDaily
	if v := c.QueryParam("timeframe"); v != "" {
		tf, err := entity.ParseTimeframe(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid timeframe"})
		}
		timeframe = tf
	}

	trendType := entity.TrendTypeKeyword
	if v := c.QueryParam("type"); v != "" {
		trendType = entity.EntityType(v)
		if !isTrendType(trendType) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid trend type"})
		}
	}

	limit := defaultTrendListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = min(n, maxTrendListLimit)
	}

	trends, err := h.trendRepo.FindTop(c.Request().Context(), timeframe, trendType, limit)
	if err != nil {
		h.logger.Error("Failed to list trends", logger.ErrorField(err), logger.StringField("timeframe", string(timeframe)))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	resp := make([]dto.TrendResponse, 0, len(trends))
	for _, t := range trends {
		resp = append(resp, dto.TrendResponse{
			Keyword:     t.Keyword,
			Type:        string(t.EntityType),
			Timeframe:   string(t.Timeframe),
			Count:       t.Count,
			Score:       t.Score,
			Categories:  t.Categories,
			Articles:    len(t.Articles),
			FirstSeenAt: t.FirstSeenAt,
			LastSeenAt:  t.LastSeenAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func isTrendType(t entity.EntityType) bool {
	if t == entity.TrendTypeKeyword || t == entity.TrendTypeCategory {
		return true
	}
	for _, named := range entity.NamedEntityTypes {
		if t == named {
			return true
		}
	}
	return false
}
