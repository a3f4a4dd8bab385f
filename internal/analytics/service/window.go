package service

import (
	"context"
	"fmt"
	"time"

	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
)

// fetchWindow reads at most limit articles from [from, to]. It asks the store for one
// extra row so a window holding more than limit articles is reported as truncated.
func fetchWindow(ctx context.Context, repo repository.ArticleRepository, from, to time.Time, limit int, requireEntities bool) ([]entity.Article, bool, error) {
	query := limit
	if limit > 0 {
		query = limit + 1
	}
	articles, err := repo.FindPublishedBetween(ctx, from, to, query, requireEntities)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrArticleStoreUnavailable, err)
	}
	if limit > 0 && len(articles) > limit {
		return articles[:limit], true, nil
	}
	return articles, false, nil
}
