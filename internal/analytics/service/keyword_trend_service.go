package service

import (
	"context"
	"math"
	"sort"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/nlp"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

// KeywordTrendService ranks free-text terms by TF-IDF over a timeframe window.
type KeywordTrendService interface {
	Run(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error)
}

// NewKeywordTrendService creates a new KeywordTrendService.
func NewKeywordTrendService(
	cfg *config.Config,
	log *logger.Logger,
	clock utils.Clock,
	articleRepo repository.ArticleRepository,
	trendRepo repository.TrendRepository,
	metrics *Metrics,
) KeywordTrendService {
	return &keywordTrendService{
		cfg:         cfg,
		logger:      log,
		clock:       clock,
		articleRepo: articleRepo,
		trendRepo:   trendRepo,
		metrics:     metrics,
	}
}

type keywordTrendService struct {
	cfg         *config.Config
	logger      *logger.Logger
	clock       utils.Clock
	articleRepo repository.ArticleRepository
	trendRepo   repository.TrendRepository
	metrics     *Metrics
}

// Run scores the window ending now and writes the top keywords. With forceRefresh the
// timeframe's keyword rows are swapped for the new set in one transaction.
func (s *keywordTrendService) Run(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error) {
	now := s.clock.Now()
	articles, truncated, err := fetchWindow(ctx, s.articleRepo, now.Add(-timeframe.Window()), now, s.cfg.Analytics.TrendArticleLimit, false)
	if err != nil {
		return nil, err
	}
	if truncated {
		s.logger.Warn("Keyword trend window truncated at article limit",
			logger.StringField("timeframe", string(timeframe)), logger.IntField("limit", s.cfg.Analytics.TrendArticleLimit))
	}

	trends := scoreKeywords(articles, timeframe, now, s.cfg.Analytics.MinTrendArticles, s.cfg.Analytics.KeywordTopN)

	if forceRefresh {
		err = s.trendRepo.ReplaceTimeframe(ctx, timeframe, []entity.EntityType{entity.TrendTypeKeyword}, trends)
	} else {
		err = s.trendRepo.Upsert(ctx, trends)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.addTrends(string(timeframe), string(entity.TrendTypeKeyword), len(trends))
	topScore := 0.0
	if len(trends) > 0 {
		topScore = trends[0].Score
	}
	s.logger.Info("Keyword trends updated",
		logger.StringField("timeframe", string(timeframe)),
		logger.Float64Field("top_score", topScore),
		logger.IntField("articles", len(articles)),
		logger.IntField("trends", len(trends)),
		logger.BoolField("force_refresh", forceRefresh),
	)

	return &dto.TrendRunResult{
		Timeframe:       timeframe,
		ArticlesScanned: len(articles),
		TrendsWritten:   len(trends),
		ForceRefresh:    forceRefresh,
		Truncated:       truncated,
	}, nil
}

// scoreKeywords computes tf(term, doc) * ln(N / df(term)) per document and accumulates it per term.
func scoreKeywords(articles []entity.Article, timeframe entity.Timeframe, now time.Time, minArticles, topN int) []entity.Trend {
	docs := make([]map[string]int, len(articles))
	df := make(map[string]int)
	for i := range articles {
		tf := nlp.TermFrequencies(articles[i].Title + " " + articles[i].Description)
		docs[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	total := float64(len(articles))
	acc := newTrendAccumulator()
	for i := range articles {
		for term, n := range docs[i] {
			idf := math.Log(total / float64(df[term]))
			acc.add(term, &articles[i], float64(n)*idf, n)
		}
	}

	trends := acc.trends(entity.TrendTypeKeyword, timeframe, now, minArticles)
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Score != trends[j].Score {
			return trends[i].Score > trends[j].Score
		}
		if trends[i].Count != trends[j].Count {
			return trends[i].Count > trends[j].Count
		}
		return trends[i].Keyword < trends[j].Keyword
	})
	if topN > 0 && len(trends) > topN {
		trends = trends[:topN]
	}
	return trends
}
