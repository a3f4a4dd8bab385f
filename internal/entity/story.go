package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SentimentTrend is the direction of a cluster's sentiment over time.
type SentimentTrend string

const (
	SentimentTrendImproving SentimentTrend = "improving"
	SentimentTrendWorsening SentimentTrend = "worsening"
	SentimentTrendPositive  SentimentTrend = "positive"
	SentimentTrendNegative  SentimentTrend = "negative"
	SentimentTrendNeutral   SentimentTrend = "neutral"
)

// Chapter holds the articles of a story published on one calendar day.
type Chapter struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Articles    []string  `json:"articles"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoryEntity is an entity attached to a story with an importance of 0-10. Key is the
// lower-cased name the entity lookup matches on.
type StoryEntity struct {
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Type       EntityType `json:"type"`
	Importance int        `json:"importance"`
}

// NewStoryEntity builds a StoryEntity with its lookup key filled in.
func NewStoryEntity(name string, entityType EntityType, importance int) StoryEntity {
	return StoryEntity{Name: name, Key: toLower(name), Type: entityType, Importance: importance}
}

// MatchKey is Key, or the lower-cased name for entities written without one.
func (e StoryEntity) MatchKey() string {
	if e.Key != "" {
		return e.Key
	}
	return toLower(e.Name)
}

// Prediction is a forward-looking statement about a story.
type Prediction struct {
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// Timeline spans the story's chapters.
type Timeline struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Ongoing   bool      `gorm:"index" json:"ongoing"`
}

// Story is a persistent narrative aggregate built around a primary entity.
type Story struct {
	ID                string                           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title             string                           `gorm:"type:text" json:"title"`
	Summary           string                           `gorm:"type:text" json:"summary"`
	Narrative         string                           `gorm:"type:text" json:"narrative"`
	Chapters          datatypes.JSONSlice[Chapter]     `gorm:"type:jsonb" json:"chapters"`
	Keywords          pq.StringArray                   `gorm:"type:text[]" json:"keywords"`
	Entities          datatypes.JSONSlice[StoryEntity] `gorm:"type:jsonb" json:"entities"`
	Categories        pq.StringArray                   `gorm:"type:text[]" json:"categories"`
	Predictions       datatypes.JSONSlice[Prediction]  `gorm:"type:jsonb" json:"predictions"`
	Timeline          Timeline                         `gorm:"embedded;embeddedPrefix:timeline_" json:"timeline"`
	Countries         pq.StringArray                   `gorm:"type:text[]" json:"countries"`
	PrimaryEntityName string                           `gorm:"type:varchar(255)" json:"primary_entity_name"`
	PrimaryEntityType EntityType                       `gorm:"type:varchar(32)" json:"primary_entity_type"`
	SentimentTrend    SentimentTrend                   `gorm:"type:varchar(16)" json:"sentiment_trend"`
	ViewCount         int                              `gorm:"not null;default:0" json:"view_count"`
	RelatedStories    pq.StringArray                   `gorm:"type:text[]" json:"related_stories"`
	RelevancyScore    int                              `gorm:"index" json:"relevancy_score"`
	CreatedAt         time.Time                        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Story model.
func (Story) TableName() string {
	return "stories"
}

// BeforeSave keeps the timeline in step with the chapters on every write.
func (s *Story) BeforeSave(tx *gorm.DB) error {
	s.RecomputeTimeline()
	return nil
}

// RecomputeTimeline sets the timeline bounds to the min/max chapter publish time.
func (s *Story) RecomputeTimeline() {
	if len(s.Chapters) == 0 {
		return
	}
	start := s.Chapters[0].PublishedAt
	end := s.Chapters[0].PublishedAt
	for _, ch := range s.Chapters[1:] {
		if ch.PublishedAt.Before(start) {
			start = ch.PublishedAt
		}
		if ch.PublishedAt.After(end) {
			end = ch.PublishedAt
		}
	}
	s.Timeline.StartDate = start
	s.Timeline.EndDate = end
}

// ArticleIDs returns the set of article ids across all chapters.
func (s *Story) ArticleIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, ch := range s.Chapters {
		for _, id := range ch.Articles {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// TotalArticleCount sums the chapter article lists without deduplicating across chapters.
func (s *Story) TotalArticleCount() int {
	total := 0
	for _, ch := range s.Chapters {
		total += len(ch.Articles)
	}
	return total
}

// HasEntity reports whether the story carries an entity with the given lower-cased name and type.
func (s *Story) HasEntity(lowerName string, entityType EntityType) bool {
	for _, e := range s.Entities {
		if e.Type == entityType && e.MatchKey() == lowerName {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a story can be rebuilt before it is persisted.
func (s *Story) Clone() *Story {
	c := *s
	c.Chapters = make(datatypes.JSONSlice[Chapter], len(s.Chapters))
	for i, ch := range s.Chapters {
		ch.Articles = append([]string(nil), ch.Articles...)
		c.Chapters[i] = ch
	}
	c.Keywords = append(pq.StringArray(nil), s.Keywords...)
	c.Entities = append(datatypes.JSONSlice[StoryEntity](nil), s.Entities...)
	c.Categories = append(pq.StringArray(nil), s.Categories...)
	c.Predictions = append(datatypes.JSONSlice[Prediction](nil), s.Predictions...)
	c.Countries = append(pq.StringArray(nil), s.Countries...)
	c.RelatedStories = append(pq.StringArray(nil), s.RelatedStories...)
	return &c
}
