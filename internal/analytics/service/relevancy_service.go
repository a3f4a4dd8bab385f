package service

import (
	"context"
	"math"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"
)

// RelevancyService rescores every ongoing story.
type RelevancyService interface {
	Run(ctx context.Context) (*dto.RelevancyRunResult, error)
}

// NewRelevancyService creates a new RelevancyService.
func NewRelevancyService(cfg *config.Config, log *logger.Logger, clock utils.Clock, storyRepo repository.StoryRepository) RelevancyService {
	pageSize := cfg.Analytics.RelevancyPageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	return &relevancyService{
		logger:    log,
		clock:     clock,
		storyRepo: storyRepo,
		pageSize:  pageSize,
	}
}

type relevancyService struct {
	logger    *logger.Logger
	clock     utils.Clock
	storyRepo repository.StoryRepository
	pageSize  int
}

// RelevancyScore is round(5*articles + 100/max(1, days) + 10*related + views).
func RelevancyScore(totalArticles, daysSinceUpdate, relatedStories, viewCount int) int {
	days := daysSinceUpdate
	if days < 1 {
		days = 1
	}
	return int(math.Round(5*float64(totalArticles) + 100/float64(days) + 10*float64(relatedStories) + float64(viewCount)))
}

// DaysSince is the number of whole days between updatedAt and now.
func DaysSince(now, updatedAt time.Time) int {
	if !now.After(updatedAt) {
		return 0
	}
	return int(now.Sub(updatedAt) / (24 * time.Hour))
}

// Run pages through ongoing stories and writes changed scores. Failures on single
// stories are logged and skipped.
func (s *relevancyService) Run(ctx context.Context) (*dto.RelevancyRunResult, error) {
	now := s.clock.Now()
	result := &dto.RelevancyRunResult{}

	afterID := ""
	for {
		if !utils.ShouldContinue(ctx, s.logger) {
			result.Incomplete = true
			break
		}
		stories, err := s.storyRepo.ListOngoing(ctx, afterID, s.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				result.Incomplete = true
				break
			}
			return nil, err
		}
		if len(stories) == 0 {
			break
		}

		for i := range stories {
			story := &stories[i]
			score := RelevancyScore(story.TotalArticleCount(), DaysSince(now, story.UpdatedAt), len(story.RelatedStories), story.ViewCount)
			result.StoriesScored++
			if score == story.RelevancyScore {
				continue
			}
			if err := s.storyRepo.UpdateRelevancyScore(ctx, story.ID, score); err != nil {
				s.logger.Error("Failed to update relevancy score", logger.ErrorField(err), logger.StringField("story_id", story.ID))
				result.StoriesFailed++
			}
		}

		afterID = stories[len(stories)-1].ID
		if len(stories) < s.pageSize {
			break
		}
	}

	s.logger.Info("Relevancy scores updated",
		logger.IntField("scored", result.StoriesScored),
		logger.IntField("failed", result.StoriesFailed),
		logger.BoolField("incomplete", result.Incomplete),
	)
	return result, nil
}
