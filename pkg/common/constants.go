package common

const (
	RedisStreamRunCompleted = "analytics.run.completed"
	RedisStoryLockPrefix    = "analytics:story-lock:"

	MetricsNamespace = "news_analytics"
)
