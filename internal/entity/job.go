package entity

import (
	"database/sql"
	"encoding/json"
	"time"
)

// JobType identifies one pipeline pass.
type JobType string

const (
	JobTypeKeywordTrend    JobType = "keyword_trend"
	JobTypeEntityTrend     JobType = "entity_trend"
	JobTypeStoryClustering JobType = "story_clustering"
	JobTypeRelevancy       JobType = "relevancy"
)

// Job is a configured pipeline pass with its payload and wall-clock budget.
type Job struct {
	Name     string          `json:"name"`
	Type     JobType         `json:"type"`
	Schedule string          `json:"schedule"`
	Timeout  time.Duration   `json:"timeout"`
	Payload  json.RawMessage `json:"payload"`
}

// RunStatus is the outcome of one analytics run.
type RunStatus string

const (
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusIncomplete RunStatus = "incomplete"
	RunStatusFailed     RunStatus = "failed"
)

// AnalyticsRun records one execution of a job.
type AnalyticsRun struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	JobName      string         `gorm:"type:varchar(100)" json:"job_name"`
	JobType      JobType        `gorm:"type:varchar(50);not null" json:"job_type"`
	Status       RunStatus      `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	Output       sql.NullString `gorm:"type:text" json:"output"`
	ErrorMessage sql.NullString `gorm:"type:text" json:"error_message"`
}

// TableName specifies the table name for the AnalyticsRun model.
func (AnalyticsRun) TableName() string {
	return "analytics_runs"
}
