package dto

import (
	"time"

	"golang-news-analytics/internal/entity"
)

// TrendJobPayload is the payload of keyword and entity trend jobs.
type TrendJobPayload struct {
	Timeframes   []string `json:"timeframes"`
	ForceRefresh bool     `json:"force_refresh"`
}

// TrendRunResult reports one trend pass over one timeframe.
type TrendRunResult struct {
	Timeframe       entity.Timeframe `json:"timeframe"`
	ArticlesScanned int              `json:"articles_scanned"`
	TrendsWritten   int              `json:"trends_written"`
	ForceRefresh    bool             `json:"force_refresh"`
	Truncated       bool             `json:"truncated,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// StoryRunResult reports one clustering pass.
type StoryRunResult struct {
	ArticlesScanned    int                 `json:"articles_scanned"`
	Truncated          bool                `json:"truncated,omitempty"`
	Clusters           int                 `json:"clusters"`
	SignificantGroups  int                 `json:"significant_groups"`
	StoriesCreated     []string            `json:"stories_created"`
	StoriesExtended    []string            `json:"stories_extended"`
	GroupsSkipped      int                 `json:"groups_skipped"`
	GroupsFailed       int                 `json:"groups_failed"`
	RelationshipsAdded int                 `json:"relationships_added"`
	Relevancy          *RelevancyRunResult `json:"relevancy,omitempty"`
	Incomplete         bool                `json:"incomplete"`
}

// RelevancyRunResult reports one relevancy pass.
type RelevancyRunResult struct {
	StoriesScored int  `json:"stories_scored"`
	StoriesFailed int  `json:"stories_failed"`
	Incomplete    bool `json:"incomplete"`
}

// RunReport is what a strategy returns as its JSON output.
type RunReport struct {
	JobType    entity.JobType      `json:"job_type"`
	Status     entity.RunStatus    `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Trends     []TrendRunResult    `json:"trends,omitempty"`
	Stories    *StoryRunResult     `json:"stories,omitempty"`
	Relevancy  *RelevancyRunResult `json:"relevancy,omitempty"`
}

// RunCompletedEvent is published to the run stream after each job.
type RunCompletedEvent struct {
	RunID   string           `json:"run_id"`
	JobName string           `json:"job_name"`
	JobType entity.JobType   `json:"job_type"`
	Status  entity.RunStatus `json:"status"`
	Output  string           `json:"output"`
}
