package service

import (
	"context"
	"strings"

	"golang-news-analytics/internal/entity"
)

// EntityLocker serializes story resolution per entity key. Lock blocks until the
// key is free or ctx is done and returns the release func.
type EntityLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func entityLockKey(t entity.EntityType, lowerName string) string {
	return string(t) + ":" + strings.ReplaceAll(lowerName, " ", "_")
}

func storyLockKey(storyID string) string {
	return "story:" + storyID
}
