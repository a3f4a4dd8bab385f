package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-analytics/internal/entity"

	"gorm.io/gorm"
)

// articleColumns is the projection every pass reads.
var articleColumns = []string{
	"id", "title", "description", "content", "published_at", "source_name", "categories",
	"countries", "sentiment", "sentiment_assessment", "entities", "story_references", "created_at",
}

// ArticleRepository defines the read/back-reference operations on the article store.
type ArticleRepository interface {
	FindPublishedBetween(ctx context.Context, from, to time.Time, limit int, requireEntities bool) ([]entity.Article, error)
	FindByIDs(ctx context.Context, ids []string) ([]entity.Article, error)
	AppendStoryReference(ctx context.Context, storyID string, articleIDs []string) error
}

// NewArticleRepository creates a new GORM-based article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

// FindPublishedBetween returns articles published inside [from, to]. Articles whose publish
// date could not be parsed are picked up by their ingestion time instead.
func (r *articleRepository) FindPublishedBetween(ctx context.Context, from, to time.Time, limit int, requireEntities bool) ([]entity.Article, error) {
	var articles []entity.Article
	q := r.db.WithContext(ctx).
		Select(articleColumns).
		Where("(published_at BETWEEN ? AND ?) OR (published_at IS NULL AND created_at BETWEEN ? AND ?)", from, to, from, to)
	if requireEntities {
		q = q.Where("entities IS NOT NULL AND jsonb_array_length(entities) > 0")
	}
	if err := q.Order("published_at DESC NULLS LAST, id").Limit(limit).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to find articles: %w", err)
	}
	return articles, nil
}

// FindByIDs returns the articles with the given ids; unknown ids are ignored.
func (r *articleRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var articles []entity.Article
	if err := r.db.WithContext(ctx).Select(articleColumns).Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to find articles by id: %w", err)
	}
	return articles, nil
}

// AppendStoryReference adds storyID to the story_references set of each article.
func (r *articleRepository) AppendStoryReference(ctx context.Context, storyID string, articleIDs []string) error {
	if len(articleIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Article{}).
		Where("id IN ?", articleIDs).
		Where("NOT (? = ANY(COALESCE(story_references, '{}')))", storyID).
		UpdateColumn("story_references", gorm.Expr("array_append(COALESCE(story_references, '{}'), ?)", storyID)).Error
	if err != nil {
		return fmt.Errorf("failed to append story reference: %w", err)
	}
	return nil
}
