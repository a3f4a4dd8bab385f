package entity

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Timeframe is the aggregation window granularity for trends.
type Timeframe string

const (
	TimeframeHourly  Timeframe = "hourly"
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// Window returns the look-back duration of the timeframe.
func (t Timeframe) Window() time.Duration {
	switch t {
	case TimeframeHourly:
		return time.Hour
	case TimeframeDaily:
		return 24 * time.Hour
	case TimeframeWeekly:
		return 7 * 24 * time.Hour
	case TimeframeMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

// ParseTimeframe validates a timeframe name.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if tf.Window() == 0 {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// SourceCount is one row of a trend's source distribution.
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountryCount is one row of a trend's country distribution.
type CountryCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// SentimentSummary aggregates the sentiment of contributing articles.
type SentimentSummary struct {
	PositiveCount int     `json:"positive_count"`
	NeutralCount  int     `json:"neutral_count"`
	NegativeCount int     `json:"negative_count"`
	AvgScore      float64 `json:"avg_score"`
}

// Trend is a ranked keyword, entity or category for one timeframe.
type Trend struct {
	ID          uint                                 `gorm:"primaryKey" json:"id"`
	Keyword     string                               `gorm:"type:varchar(255);not null;uniqueIndex:idx_trends_key" json:"keyword"`
	Timeframe   Timeframe                            `gorm:"type:varchar(16);not null;uniqueIndex:idx_trends_key" json:"timeframe"`
	EntityType  EntityType                           `gorm:"type:varchar(32);not null;uniqueIndex:idx_trends_key" json:"entity_type"`
	Count       int                                  `json:"count"`
	Score       float64                              `json:"score"`
	Categories  pq.StringArray                       `gorm:"type:text[]" json:"categories"`
	Sources     datatypes.JSONSlice[SourceCount]     `gorm:"type:jsonb" json:"sources"`
	Countries   datatypes.JSONSlice[CountryCount]    `gorm:"type:jsonb" json:"countries"`
	Sentiment   datatypes.JSONType[SentimentSummary] `gorm:"type:jsonb" json:"sentiment"`
	Articles    pq.StringArray                       `gorm:"type:text[]" json:"articles"`
	FirstSeenAt time.Time                            `json:"first_seen_at"`
	LastSeenAt  time.Time                            `json:"last_seen_at"`
}

// TableName specifies the table name for the Trend model.
func (Trend) TableName() string {
	return "trends"
}
