package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// SentimentAssessment is the upstream label attached to each article.
type SentimentAssessment string

const (
	SentimentPositive SentimentAssessment = "positive"
	SentimentNeutral  SentimentAssessment = "neutral"
	SentimentNegative SentimentAssessment = "negative"
)

// ArticleEntity is a named entity extracted upstream. Type is the raw, unnormalized tag.
type ArticleEntity struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Weight returns the entity's mention count, defaulting to 1.
func (e ArticleEntity) Weight() int {
	if e.Count <= 0 {
		return 1
	}
	return e.Count
}

// Article is an ingested news article. The pipeline only writes StoryReferences.
type Article struct {
	ID                  string                             `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title               string                             `gorm:"type:text" json:"title"`
	Description         string                             `gorm:"type:text" json:"description"`
	Content             string                             `gorm:"type:text" json:"content"`
	PublishedAt         *time.Time                         `gorm:"index" json:"published_at,omitempty"`
	SourceName          string                             `gorm:"type:varchar(255)" json:"source_name"`
	Categories          pq.StringArray                     `gorm:"type:text[]" json:"categories"`
	Countries           pq.StringArray                     `gorm:"type:text[]" json:"countries"`
	Sentiment           *float64                           `json:"sentiment,omitempty"`
	SentimentAssessment SentimentAssessment                `gorm:"type:varchar(16)" json:"sentiment_assessment"`
	Entities            datatypes.JSONSlice[ArticleEntity] `gorm:"type:jsonb" json:"entities"`
	StoryReferences     pq.StringArray                     `gorm:"type:text[]" json:"story_references"`
	CreatedAt           time.Time                          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}
