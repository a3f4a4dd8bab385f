package service

import (
	"sort"
	"strings"
	"time"

	"golang-news-analytics/internal/entity"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// termStats is the running aggregate for one keyword, entity or category.
type termStats struct {
	key          string
	score        float64
	count        int
	articles     map[string]struct{}
	categories   map[string]int
	sources      map[string]int
	countries    map[string]int
	positive     int
	neutral      int
	negative     int
	sentimentSum float64
	sentimentN   int
}

// trendAccumulator aggregates per-article contributions keyed by normalized term.
type trendAccumulator struct {
	terms map[string]*termStats
}

func newTrendAccumulator() *trendAccumulator {
	return &trendAccumulator{terms: make(map[string]*termStats)}
}

// add records one article's contribution to key. Distribution tables and sentiment
// are counted once per article even if add is called again for the same pair.
func (a *trendAccumulator) add(key string, article *entity.Article, score float64, count int) {
	ts, ok := a.terms[key]
	if !ok {
		ts = &termStats{
			key:        key,
			articles:   make(map[string]struct{}),
			categories: make(map[string]int),
			sources:    make(map[string]int),
			countries:  make(map[string]int),
		}
		a.terms[key] = ts
	}
	ts.score += score
	ts.count += count

	if _, seen := ts.articles[article.ID]; seen {
		return
	}
	ts.articles[article.ID] = struct{}{}

	for _, c := range article.Categories {
		if c = strings.TrimSpace(c); c != "" {
			ts.categories[c]++
		}
	}
	if src := strings.TrimSpace(article.SourceName); src != "" {
		ts.sources[src]++
	}
	for _, c := range article.Countries {
		if c = strings.TrimSpace(c); c != "" {
			ts.countries[c]++
		}
	}

	switch article.SentimentAssessment {
	case entity.SentimentPositive:
		ts.positive++
	case entity.SentimentNegative:
		ts.negative++
	case entity.SentimentNeutral:
		ts.neutral++
	}
	if article.Sentiment != nil {
		ts.sentimentSum += *article.Sentiment
		ts.sentimentN++
	}
}

// trends returns the terms seen in at least minArticles distinct articles as Trend rows.
func (a *trendAccumulator) trends(kind entity.EntityType, timeframe entity.Timeframe, now time.Time, minArticles int) []entity.Trend {
	out := make([]entity.Trend, 0, len(a.terms))
	for _, ts := range a.terms {
		if len(ts.articles) < minArticles {
			continue
		}
		out = append(out, ts.toTrend(kind, timeframe, now))
	}
	return out
}

func (ts *termStats) toTrend(kind entity.EntityType, timeframe entity.Timeframe, now time.Time) entity.Trend {
	articles := make(pq.StringArray, 0, len(ts.articles))
	for id := range ts.articles {
		articles = append(articles, id)
	}
	sort.Strings(articles)

	categories := make(pq.StringArray, 0, len(ts.categories))
	for _, kc := range rankCounts(ts.categories) {
		categories = append(categories, kc.name)
	}

	sources := make(datatypes.JSONSlice[entity.SourceCount], 0, len(ts.sources))
	for _, kc := range rankCounts(ts.sources) {
		sources = append(sources, entity.SourceCount{Name: kc.name, Count: kc.count})
	}

	countries := make(datatypes.JSONSlice[entity.CountryCount], 0, len(ts.countries))
	for _, kc := range rankCounts(ts.countries) {
		countries = append(countries, entity.CountryCount{Code: kc.name, Count: kc.count})
	}

	summary := entity.SentimentSummary{
		PositiveCount: ts.positive,
		NeutralCount:  ts.neutral,
		NegativeCount: ts.negative,
	}
	if ts.sentimentN > 0 {
		summary.AvgScore = ts.sentimentSum / float64(ts.sentimentN)
	}

	score := 0.0
	if kind == entity.TrendTypeKeyword {
		score = ts.score
	}

	return entity.Trend{
		Keyword:     ts.key,
		Timeframe:   timeframe,
		EntityType:  kind,
		Count:       ts.count,
		Score:       score,
		Categories:  categories,
		Sources:     sources,
		Countries:   countries,
		Sentiment:   datatypes.NewJSONType(summary),
		Articles:    articles,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
}

type nameCount struct {
	name  string
	count int
}

// rankCounts orders a frequency table by count desc, then name.
func rankCounts(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for name, n := range m {
		out = append(out, nameCount{name: name, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
