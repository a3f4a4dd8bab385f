package service

import (
	"sort"
	"strings"
	"time"

	"golang-news-analytics/internal/analytics/nlp"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/utils"
)

const minPrimaryNameLen = 3

// storyCluster is the set of window articles sharing one primary entity.
type storyCluster struct {
	key          ClusterKey
	displayName  string
	members      []entity.Article
	categories   []string
	countries    []string
	sentiments   []SentimentPoint
	cooccurrence map[ClusterKey]int
}

func (c *storyCluster) memberIDs() []string {
	ids := make([]string, 0, len(c.members))
	for _, m := range c.members {
		ids = append(ids, m.ID)
	}
	return ids
}

// primaryEntity returns the highest-count entity whose name has at least three characters.
// Ties keep the upstream order.
func primaryEntity(article *entity.Article) (entity.ArticleEntity, bool) {
	ents := append([]entity.ArticleEntity(nil), article.Entities...)
	sort.SliceStable(ents, func(i, j int) bool {
		return ents[i].Weight() > ents[j].Weight()
	})
	for _, e := range ents {
		if len([]rune(strings.TrimSpace(e.Name))) >= minPrimaryNameLen {
			return e, true
		}
	}
	return entity.ArticleEntity{}, false
}

func clusterKeyOf(e entity.ArticleEntity) ClusterKey {
	return ClusterKey{Type: nlp.NormalizeEntityType(e.Type), Name: nlp.NormalizeEntityName(e.Name)}
}

// effectiveTime is the article's publish time, or now when it could not be parsed.
func effectiveTime(article *entity.Article, now time.Time) time.Time {
	if utils.IsValidTime(article.PublishedAt) {
		return article.PublishedAt.UTC()
	}
	return now
}

// buildClusters groups articles by primary entity and collects the per-group aggregates.
func buildClusters(articles []entity.Article, now time.Time) []*storyCluster {
	byKey := make(map[ClusterKey]*storyCluster)
	var order []ClusterKey

	for i := range articles {
		article := &articles[i]
		primary, ok := primaryEntity(article)
		if !ok {
			continue
		}
		key := clusterKeyOf(primary)

		c, exists := byKey[key]
		if !exists {
			c = &storyCluster{
				key:          key,
				displayName:  strings.Join(strings.Fields(primary.Name), " "),
				cooccurrence: make(map[ClusterKey]int),
			}
			byKey[key] = c
			order = append(order, key)
		}

		c.members = append(c.members, *article)
		c.categories = utils.AppendUnique(c.categories, article.Categories...)
		c.countries = utils.AppendUnique(c.countries, article.Countries...)
		if article.Sentiment != nil {
			c.sentiments = append(c.sentiments, SentimentPoint{
				PublishedAt: effectiveTime(article, now),
				Score:       *article.Sentiment,
			})
		}

		seen := map[ClusterKey]struct{}{key: {}}
		for _, e := range article.Entities {
			k := clusterKeyOf(e)
			if k.Name == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			c.cooccurrence[k] += e.Weight()
		}
	}

	clusters := make([]*storyCluster, 0, len(order))
	for _, k := range order {
		clusters = append(clusters, byKey[k])
	}
	return clusters
}

// significantClusters keeps clusters with at least minSize members, largest first.
func significantClusters(clusters []*storyCluster, minSize int) []*storyCluster {
	var out []*storyCluster
	for _, c := range clusters {
		if len(c.members) >= minSize {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].members) != len(out[j].members) {
			return len(out[i].members) > len(out[j].members)
		}
		return out[i].key.less(out[j].key)
	})
	return out
}

// dayGroup is the articles of one UTC calendar day.
type dayGroup struct {
	day      string
	earliest time.Time
	articles []entity.Article
}

// groupByDay buckets articles by UTC day of publish; unparsable dates land on today.
func groupByDay(articles []entity.Article, now time.Time) []dayGroup {
	byDay := make(map[string]*dayGroup)
	for i := range articles {
		t := effectiveTime(&articles[i], now)
		key := utils.DayKey(t)
		g, ok := byDay[key]
		if !ok {
			g = &dayGroup{day: key, earliest: t}
			byDay[key] = g
		}
		if t.Before(g.earliest) {
			g.earliest = t
		}
		g.articles = append(g.articles, articles[i])
	}

	out := make([]dayGroup, 0, len(byDay))
	for _, g := range byDay {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day < out[j].day })
	return out
}

// memberWindow returns the min and max member publish times, substituting now for
// unparsable dates in the min and the epoch in the max. It feeds the story texts only;
// the persisted timeline is recomputed from the chapter dates.
func memberWindow(articles []entity.Article, now time.Time) (time.Time, time.Time) {
	epoch := time.Unix(0, 0).UTC()
	var start, end time.Time
	for i := range articles {
		forMin, forMax := now, epoch
		if utils.IsValidTime(articles[i].PublishedAt) {
			forMin = articles[i].PublishedAt.UTC()
			forMax = forMin
		}
		if i == 0 || forMin.Before(start) {
			start = forMin
		}
		if i == 0 || forMax.After(end) {
			end = forMax
		}
	}
	return start, end
}

// topKeywords returns the n most frequent tokens across the articles' titles and descriptions.
func topKeywords(articles []entity.Article, n int) []string {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, tok := range nlp.Tokenize(a.Title + " " + a.Description) {
			counts[tok]++
		}
	}
	ranked := rankCounts(counts)
	out := make([]string, 0, n)
	for _, kc := range ranked {
		if len(out) == n {
			break
		}
		out = append(out, kc.name)
	}
	return out
}

func distinctSources(articles []entity.Article) int {
	seen := make(map[string]struct{})
	for _, a := range articles {
		if a.SourceName != "" {
			seen[strings.ToLower(a.SourceName)] = struct{}{}
		}
	}
	return len(seen)
}
