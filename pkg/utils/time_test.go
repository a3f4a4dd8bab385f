package utils

import (
	"context"
	"testing"
	"time"

	"golang-news-analytics/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, "2024-03-09", DayKey(time.Date(2024, 3, 10, 2, 0, 0, 0, loc)))
}

func TestIsValidTime(t *testing.T) {
	now := time.Now()
	assert.True(t, IsValidTime(&now))
	assert.False(t, IsValidTime(&time.Time{}))
	assert.False(t, IsValidTime(nil))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}

func TestShouldContinue(t *testing.T) {
	log := logger.NewNop()
	assert.True(t, ShouldContinue(context.Background(), log))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, ShouldContinue(ctx, log))
}
