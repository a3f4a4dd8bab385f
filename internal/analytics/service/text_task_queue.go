package service

import (
	"context"
	"encoding/hex"
	"hash/fnv"
	"sync"
	"time"

	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// TextQueueStats counts how text requests were served.
type TextQueueStats struct {
	Generated int `json:"generated"`
	CacheHits int `json:"cache_hits"`
	Fallbacks int `json:"fallbacks"`
}

// TextTaskQueue owns all access to the text generator: request pacing, a result cache
// and the decision to give up and let the caller use template text. Time comes from
// the injected clock and sleeper so pacing is deterministic under test.
type TextTaskQueue struct {
	generator repository.TextGenerator
	limiter   *rate.Limiter
	clock     utils.Clock
	sleep     utils.Sleeper
	cache     *cache.Cache
	maxWait   time.Duration
	logger    *logger.Logger
	metrics   *Metrics

	mu    sync.Mutex
	stats TextQueueStats
}

// NewTextTaskQueue creates a TextTaskQueue. A nil generator makes every request fall back.
func NewTextTaskQueue(
	generator repository.TextGenerator,
	limiter *rate.Limiter,
	clock utils.Clock,
	sleep utils.Sleeper,
	resultCache *cache.Cache,
	maxWait time.Duration,
	log *logger.Logger,
	metrics *Metrics,
) *TextTaskQueue {
	return &TextTaskQueue{
		generator: generator,
		limiter:   limiter,
		clock:     clock,
		sleep:     sleep,
		cache:     resultCache,
		maxWait:   maxWait,
		logger:    log,
		metrics:   metrics,
	}
}

// Generate returns generated text and true, or "" and false when the caller should fall back.
// Generation errors never escape.
func (q *TextTaskQueue) Generate(ctx context.Context, prompt string, opts dto.GenerationOptions) (string, bool) {
	if q == nil || q.generator == nil {
		return "", false
	}

	key := promptKey(prompt)
	if q.cache != nil {
		if v, ok := q.cache.Get(key); ok {
			q.record(func(s *TextQueueStats) { s.CacheHits++ }, "cached")
			return v.(string), true
		}
	}

	if q.limiter != nil {
		now := q.clock.Now()
		r := q.limiter.ReserveN(now, 1)
		if !r.OK() {
			q.record(func(s *TextQueueStats) { s.Fallbacks++ }, "fallback")
			return "", false
		}
		delay := r.DelayFrom(now)
		if delay > q.maxWait {
			r.CancelAt(now)
			q.logger.Debug("Text generation budget exhausted, using fallback", logger.DurationField("delay", delay))
			q.record(func(s *TextQueueStats) { s.Fallbacks++ }, "fallback")
			return "", false
		}
		if err := q.sleep(ctx, delay); err != nil {
			r.CancelAt(now)
			q.record(func(s *TextQueueStats) { s.Fallbacks++ }, "fallback")
			return "", false
		}
	}

	text, err := q.generator.Generate(ctx, prompt, opts)
	if err != nil || text == "" {
		if err != nil {
			q.logger.Warn("Text generation failed, using fallback", logger.ErrorField(err))
		}
		q.record(func(s *TextQueueStats) { s.Fallbacks++ }, "fallback")
		return "", false
	}

	if q.cache != nil {
		q.cache.Set(key, text, cache.DefaultExpiration)
	}
	q.record(func(s *TextQueueStats) { s.Generated++ }, "generated")
	return text, true
}

// Stats returns a snapshot of the counters.
func (q *TextTaskQueue) Stats() TextQueueStats {
	if q == nil {
		return TextQueueStats{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

func (q *TextTaskQueue) record(fn func(*TextQueueStats), result string) {
	q.mu.Lock()
	fn(&q.stats)
	q.mu.Unlock()
	q.metrics.textGeneration(result)
}

func promptKey(prompt string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
