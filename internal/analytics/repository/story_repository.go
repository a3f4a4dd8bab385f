package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang-news-analytics/internal/entity"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// StoryRepository defines the persistence operations for stories.
type StoryRepository interface {
	FindOngoingByEntity(ctx context.Context, name string, entityType entity.EntityType) (*entity.Story, error)
	FindByID(ctx context.Context, id string) (*entity.Story, error)
	Create(ctx context.Context, story *entity.Story) error
	Save(ctx context.Context, story *entity.Story) error
	AddRelatedStories(ctx context.Context, storyID string, relatedIDs []string) error
	ListOngoing(ctx context.Context, afterID string, limit int) ([]entity.Story, error)
	UpdateRelevancyScore(ctx context.Context, storyID string, score int) error
}

// NewStoryRepository creates a new GORM-based story repository.
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

type storyRepository struct {
	db *gorm.DB
}

// FindOngoingByEntity returns the oldest ongoing story carrying the entity, or nil when none does.
// The containment filter on the entity key is served by idx_stories_entities.
func (r *storyRepository) FindOngoingByEntity(ctx context.Context, name string, entityType entity.EntityType) (*entity.Story, error) {
	filter, err := json.Marshal([]map[string]string{{
		"key":  strings.ToLower(strings.TrimSpace(name)),
		"type": string(entityType),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to build entity filter: %w", err)
	}

	var story entity.Story
	err = r.db.WithContext(ctx).
		Where("timeline_ongoing = ?", true).
		Where("entities @> ?::jsonb", string(filter)).
		Order("created_at ASC").
		First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find story by entity: %w", err)
	}
	return &story, nil
}

// FindByID retrieves a story by its ID.
func (r *storyRepository) FindByID(ctx context.Context, id string) (*entity.Story, error) {
	var story entity.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	return &story, nil
}

// Create inserts a new story.
func (r *storyRepository) Create(ctx context.Context, story *entity.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// Save writes the clustering-owned columns of a story in one statement. View count,
// related stories and relevancy score belong to other writers and are left alone.
func (r *storyRepository) Save(ctx context.Context, story *entity.Story) error {
	err := r.db.WithContext(ctx).
		Model(story).
		Select("*").
		Omit("id", "view_count", "related_stories", "relevancy_score", "created_at").
		Updates(story).Error
	if err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

// AddRelatedStories merges relatedIDs into the story's related_stories set.
func (r *storyRepository) AddRelatedStories(ctx context.Context, storyID string, relatedIDs []string) error {
	if len(relatedIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Story{}).
		Where("id = ?", storyID).
		UpdateColumn("related_stories", gorm.Expr(
			"ARRAY(SELECT DISTINCT s FROM unnest(COALESCE(related_stories, '{}') || ?::text[]) AS s ORDER BY s)",
			pq.StringArray(relatedIDs),
		)).Error
	if err != nil {
		return fmt.Errorf("failed to add related stories: %w", err)
	}
	return nil
}

// ListOngoing pages through ongoing stories ordered by id, starting after afterID.
func (r *storyRepository) ListOngoing(ctx context.Context, afterID string, limit int) ([]entity.Story, error) {
	var stories []entity.Story
	err := r.db.WithContext(ctx).
		Select("id", "chapters", "related_stories", "view_count", "relevancy_score", "updated_at").
		Where("timeline_ongoing = ? AND id > ?", true, afterID).
		Order("id").
		Limit(limit).
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ongoing stories: %w", err)
	}
	return stories, nil
}

// UpdateRelevancyScore writes only the score column; updated_at is not bumped.
func (r *storyRepository) UpdateRelevancyScore(ctx context.Context, storyID string, score int) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Story{}).
		Where("id = ?", storyID).
		UpdateColumn("relevancy_score", score).Error
	if err != nil {
		return fmt.Errorf("failed to update relevancy score: %w", err)
	}
	return nil
}
