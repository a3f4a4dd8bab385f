package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/nlp"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

// EntityTrendService aggregates named entities and categories over a timeframe window.
type EntityTrendService interface {
	Run(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error)
}

// NewEntityTrendService creates a new EntityTrendService.
func NewEntityTrendService(
	cfg *config.Config,
	log *logger.Logger,
	clock utils.Clock,
	articleRepo repository.ArticleRepository,
	trendRepo repository.TrendRepository,
	extractor nlp.EntityExtractor,
	metrics *Metrics,
) EntityTrendService {
	return &entityTrendService{
		cfg:         cfg,
		logger:      log,
		clock:       clock,
		articleRepo: articleRepo,
		trendRepo:   trendRepo,
		extractor:   extractor,
		metrics:     metrics,
	}
}

type entityTrendService struct {
	cfg         *config.Config
	logger      *logger.Logger
	clock       utils.Clock
	articleRepo repository.ArticleRepository
	trendRepo   repository.TrendRepository
	extractor   nlp.EntityExtractor
	metrics     *Metrics
}

// entityTrendKinds are the trend kinds this service owns.
var entityTrendKinds = append(append([]entity.EntityType{}, entity.NamedEntityTypes...), entity.TrendTypeCategory)

func (s *entityTrendService) Run(ctx context.Context, timeframe entity.Timeframe, forceRefresh bool) (*dto.TrendRunResult, error) {
	now := s.clock.Now()
	articles, truncated, err := fetchWindow(ctx, s.articleRepo, now.Add(-timeframe.Window()), now, s.cfg.Analytics.TrendArticleLimit, false)
	if err != nil {
		return nil, err
	}
	if truncated {
		s.logger.Warn("Entity trend window truncated at article limit",
			logger.StringField("timeframe", string(timeframe)), logger.IntField("limit", s.cfg.Analytics.TrendArticleLimit))
	}

	accumulators := make(map[entity.EntityType]*trendAccumulator, len(entityTrendKinds))
	for _, kind := range entityTrendKinds {
		accumulators[kind] = newTrendAccumulator()
	}

	extracted := 0
	for i := range articles {
		article := &articles[i]
		ents := []entity.ArticleEntity(article.Entities)
		if len(ents) == 0 && s.extractor != nil {
			ents = s.extractor.Extract(article.Title, article.Description, article.Content)
			extracted++
		}

		seen := make(map[string]struct{}, len(ents))
		for _, e := range ents {
			kind := nlp.NormalizeEntityType(e.Type)
			acc, ok := accumulators[kind]
			if !ok {
				continue
			}
			name := nlp.NormalizeEntityName(e.Name)
			if name == "" {
				continue
			}
			k := string(kind) + "|" + name
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			acc.add(name, article, 0, e.Weight())
		}

		seenCategory := make(map[string]struct{}, len(article.Categories))
		for _, c := range article.Categories {
			name := nlp.NormalizeEntityName(c)
			if name == "" {
				continue
			}
			if _, dup := seenCategory[name]; dup {
				continue
			}
			seenCategory[name] = struct{}{}
			accumulators[entity.TrendTypeCategory].add(name, article, 0, 1)
		}
	}

	var trends []entity.Trend
	for _, kind := range entityTrendKinds {
		trends = append(trends, rankEntityTrends(accumulators[kind], kind, timeframe, now, s.cfg.Analytics.MinTrendArticles, s.cfg.Analytics.EntityTopN)...)
	}

	if forceRefresh {
		err = s.trendRepo.ReplaceTimeframe(ctx, timeframe, entityTrendKinds, trends)
	} else {
		err = s.trendRepo.Upsert(ctx, trends)
	}
	if err != nil {
		return nil, err
	}

	for _, kind := range entityTrendKinds {
		n := 0
		for _, t := range trends {
			if t.EntityType == kind {
				n++
			}
		}
		s.metrics.addTrends(string(timeframe), string(kind), n)
	}
	s.logger.Info("Entity trends updated",
		logger.StringField("timeframe", string(timeframe)),
		logger.IntField("articles", len(articles)),
		logger.IntField("extracted", extracted),
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

func rankEntityTrends(acc *trendAccumulator, kind entity.EntityType, timeframe entity.Timeframe, now time.Time, minArticles, topN int) []entity.Trend {
	trends := acc.trends(kind, timeframe, now, minArticles)
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Count != trends[j].Count {
			return trends[i].Count > trends[j].Count
		}
		return strings.Compare(trends[i].Keyword, trends[j].Keyword) < 0
	})
	if topN > 0 && len(trends) > topN {
		trends = trends[:topN]
	}
	return trends
}
