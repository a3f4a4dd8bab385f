package config

import (
	"time"

	"golang-news-analytics/pkg/config"
)

// Analytics holds the batch pass limits and budgets.
type Analytics struct {
	RunTimeout         time.Duration `mapstructure:"run_timeout"`
	TrendArticleLimit  int           `mapstructure:"trend_article_limit"`
	KeywordTopN        int           `mapstructure:"keyword_top_n"`
	EntityTopN         int           `mapstructure:"entity_top_n"`
	MinTrendArticles   int           `mapstructure:"min_trend_articles"`
	RelevancyPageSize  int           `mapstructure:"relevancy_page_size"`
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks"`
}

// Story holds story clustering configuration.
type Story struct {
	Window              time.Duration `mapstructure:"window"`
	ArticleLimit        int           `mapstructure:"article_limit"`
	MinClusterSize      int           `mapstructure:"min_cluster_size"`
	MaxSecondaryEntity  int           `mapstructure:"max_secondary_entities"`
	MaxRelatedStories   int           `mapstructure:"max_related_stories"`
	KeywordCount        int           `mapstructure:"keyword_count"`
	LockTTL             time.Duration `mapstructure:"lock_ttl"`
	LockWait            time.Duration `mapstructure:"lock_wait"`
	TextTaskMaxWait     time.Duration `mapstructure:"text_task_max_wait"`
	TextTaskCacheTTL    time.Duration `mapstructure:"text_task_cache_ttl"`
	NotifyNewStories    bool          `mapstructure:"notify_new_stories"`
	GenerateTextEnabled bool          `mapstructure:"generate_text_enabled"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string  `mapstructure:"api_key"`
	Model               string  `mapstructure:"model"`
	MaxRequestPerMinute int     `mapstructure:"max_request_per_minute"`
	Temperature         float32 `mapstructure:"temperature"`
	MaxTokens           int32   `mapstructure:"max_tokens"`
	TopK                float32 `mapstructure:"top_k"`
	TopP                float32 `mapstructure:"top_p"`
}

// AI holds configuration for the text generation provider. An empty provider
// disables generation and every text falls back to templates.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Job is a cron-scheduled pipeline pass.
type Job struct {
	Name     string                 `mapstructure:"name"`
	Type     string                 `mapstructure:"type"`
	Schedule string                 `mapstructure:"schedule"`
	Timeout  time.Duration          `mapstructure:"timeout"`
	Payload  map[string]interface{} `mapstructure:"payload"`
}

// Config holds the full configuration for the analytics service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Analytics Analytics       `mapstructure:"analytics"`
	Story     Story           `mapstructure:"story"`
	Gemini    Gemini          `mapstructure:"gemini"`
	AI        AI              `mapstructure:"ai"`
	Telegram  Telegram        `mapstructure:"telegram"`
	Jobs      []Job           `mapstructure:"jobs"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                       "news-analytics",
		"logger.level":                   "info",
		"logger.encoding":                "json",
		"database.port":                  5432,
		"database.ssl_mode":              "disable",
		"database.time_zone":             "UTC",
		"database.max_idle_conns":        5,
		"database.max_open_conns":        20,
		"database.conn_max_lifetime":     "1h",
		"database.log_level":             "warn",
		"redis.port":                     6379,
		"redis.pool_size":                10,
		"redis.stream_max_len":           1000,
		"api.host":                       "0.0.0.0",
		"api.port":                       8080,
		"analytics.run_timeout":          10 * time.Minute,
		"analytics.trend_article_limit":  20000,
		"analytics.keyword_top_n":        100,
		"analytics.entity_top_n":         50,
		"analytics.min_trend_articles":   2,
		"analytics.relevancy_page_size":  200,
		"analytics.max_concurrent_tasks": 4,
		"story.window":                   72 * time.Hour,
		"story.article_limit":            5000,
		"story.min_cluster_size":         4,
		"story.max_secondary_entities":   5,
		"story.max_related_stories":      5,
		"story.keyword_count":            10,
		"story.lock_ttl":                 time.Minute,
		"story.lock_wait":                10 * time.Second,
		"story.text_task_max_wait":       30 * time.Second,
		"story.text_task_cache_ttl":      6 * time.Hour,
		"gemini.model":                   "gemini-2.0-flash",
		"gemini.max_request_per_minute":  15,
		"gemini.temperature":             0.7,
		"gemini.max_tokens":              1024,
		"gemini.top_k":                   40,
		"gemini.top_p":                   0.95,
	}
}

// Load loads the analytics configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
