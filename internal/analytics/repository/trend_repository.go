package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-analytics/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const trendBatchSize = 200

// TrendRepository defines the write operations for trends.
type TrendRepository interface {
	Upsert(ctx context.Context, trends []entity.Trend) error
	ReplaceTimeframe(ctx context.Context, timeframe entity.Timeframe, entityTypes []entity.EntityType, trends []entity.Trend) error
	FindTop(ctx context.Context, timeframe entity.Timeframe, entityType entity.EntityType, limit int) ([]entity.Trend, error)
}

// NewTrendRepository creates a new GORM-based trend repository.
func NewTrendRepository(db *gorm.DB) TrendRepository {
	return &trendRepository{db: db}
}

type trendRepository struct {
	db *gorm.DB
}

// Upsert inserts trends or refreshes the existing row for the same (keyword, timeframe, entity type).
// first_seen_at is left untouched on conflict and article ids are merged, never dropped.
func (r *trendRepository) Upsert(ctx context.Context, trends []entity.Trend) error {
	if len(trends) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "keyword"}, {Name: "timeframe"}, {Name: "entity_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        gorm.Expr("EXCLUDED.count"),
			"score":        gorm.Expr("EXCLUDED.score"),
			"categories":   gorm.Expr("EXCLUDED.categories"),
			"sources":      gorm.Expr("EXCLUDED.sources"),
			"countries":    gorm.Expr("EXCLUDED.countries"),
			"sentiment":    gorm.Expr("EXCLUDED.sentiment"),
			"last_seen_at": gorm.Expr("EXCLUDED.last_seen_at"),
			"articles":     gorm.Expr("ARRAY(SELECT DISTINCT a FROM unnest(COALESCE(trends.articles, '{}') || EXCLUDED.articles) AS a ORDER BY a)"),
		}),
	}).CreateInBatches(&trends, trendBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert trends: %w", err)
	}
	return nil
}

// ReplaceTimeframe swaps every row of the given entity types for the timeframe in one transaction,
// carrying over first_seen_at for keys that survive the rebuild.
func (r *trendRepository) ReplaceTimeframe(ctx context.Context, timeframe entity.Timeframe, entityTypes []entity.EntityType, trends []entity.Trend) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []entity.Trend
		if err := tx.Select("keyword", "entity_type", "first_seen_at").
			Where("timeframe = ? AND entity_type IN ?", timeframe, entityTypes).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load existing trends: %w", err)
		}
		firstSeen := make(map[string]time.Time, len(existing))
		for _, t := range existing {
			firstSeen[string(t.EntityType)+"|"+t.Keyword] = t.FirstSeenAt
		}

		if err := tx.Where("timeframe = ? AND entity_type IN ?", timeframe, entityTypes).
			Delete(&entity.Trend{}).Error; err != nil {
			return fmt.Errorf("failed to delete trends: %w", err)
		}

		if len(trends) == 0 {
			return nil
		}
		for i := range trends {
			if ts, ok := firstSeen[string(trends[i].EntityType)+"|"+trends[i].Keyword]; ok {
				trends[i].FirstSeenAt = ts
			}
		}
		if err := tx.CreateInBatches(&trends, trendBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert trends: %w", err)
		}
		return nil
	})
}

// FindTop returns the highest ranked trends of one type for a timeframe.
func (r *trendRepository) FindTop(ctx context.Context, timeframe entity.Timeframe, entityType entity.EntityType, limit int) ([]entity.Trend, error) {
	var trends []entity.Trend
	order := "count DESC, keyword"
	if entityType == entity.TrendTypeKeyword {
		order = "score DESC, count DESC, keyword"
	}
	if err := r.db.WithContext(ctx).
		Where("timeframe = ? AND entity_type = ?", timeframe, entityType).
		Order(order).Limit(limit).Find(&trends).Error; err != nil {
		return nil, fmt.Errorf("failed to find trends: %w", err)
	}
	return trends, nil
}
