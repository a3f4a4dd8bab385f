package dto

import "time"

// ErrorResponse is the body of a failed ops request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunRequest triggers a job on demand.
type RunRequest struct {
	Timeframes   []string `json:"timeframes"`
	ForceRefresh bool     `json:"force_refresh"`
	TimeoutSec   int      `json:"timeout_sec"`
}

// RunResponse describes an analytics run.
type RunResponse struct {
	ID           string     `json:"id"`
	JobName      string     `json:"job_name"`
	JobType      string     `json:"job_type"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Output       string     `json:"output,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// TrendResponse is one ranked trend row.
type TrendResponse struct {
	Keyword     string    `json:"keyword"`
	Type        string    `json:"type"`
	Timeframe   string    `json:"timeframe"`
	Count       int       `json:"count"`
	Score       float64   `json:"score"`
	Categories  []string  `json:"categories,omitempty"`
	Articles    int       `json:"article_count"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
