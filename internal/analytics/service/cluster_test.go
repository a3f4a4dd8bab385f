package service

import (
	"testing"
	"time"

	"golang-news-analytics/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryEntity(t *testing.T) {
	article := newArticle("1", nil, nil,
		entity.ArticleEntity{Name: "EU", Type: "organization", Count: 9},
		entity.ArticleEntity{Name: "Acme", Type: "ORG", Count: 4},
		entity.ArticleEntity{Name: "Berlin", Type: "city", Count: 4},
	)

	got, ok := primaryEntity(&article)
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name, "short names are skipped and ties keep upstream order")

	empty := newArticle("2", nil, nil, entity.ArticleEntity{Name: "UN", Type: "org", Count: 1})
	_, ok = primaryEntity(&empty)
	assert.False(t, ok)
}

func TestBuildClusters(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	acme := entity.ArticleEntity{Name: "Acme", Type: "organization", Count: 5}
	acmeOrg := entity.ArticleEntity{Name: " ACME ", Type: "org", Count: 3}
	berlin := entity.ArticleEntity{Name: "Berlin", Type: "city", Count: 1}

	clusters := buildClusters([]entity.Article{
		newArticle("1", ptrTime(now), ptrFloat(0.2), acme, berlin),
		newArticle("2", ptrTime(now), nil, acmeOrg),
		newArticle("3", ptrTime(now), nil, berlin),
	}, now)

	require.Len(t, clusters, 2)
	assert.Equal(t, keyAcme, clusters[0].key)
	assert.Equal(t, "Acme", clusters[0].displayName)
	assert.Equal(t, []string{"1", "2"}, clusters[0].memberIDs())
	assert.Len(t, clusters[0].sentiments, 1)
	assert.Equal(t, map[ClusterKey]int{keyBerlin: 1}, clusters[0].cooccurrence)
	assert.Equal(t, keyBerlin, clusters[1].key)
}

func TestSignificantClusters(t *testing.T) {
	small := &storyCluster{key: keyBerlin, members: make([]entity.Article, 3)}
	big := &storyCluster{key: keyGlobex, members: make([]entity.Article, 5)}
	tie := &storyCluster{key: keyAcme, members: make([]entity.Article, 5)}

	got := significantClusters([]*storyCluster{small, big, tie}, 4)
	require.Len(t, got, 2)
	assert.Equal(t, keyAcme, got[0].key)
	assert.Equal(t, keyGlobex, got[1].key)
}

func TestGroupByDay_UnparsableDateLandsOnToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	days := groupByDay([]entity.Article{
		newArticle("1", ptrTime(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)), nil),
		newArticle("2", nil, nil),
		newArticle("3", ptrTime(time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)), nil),
	}, now)

	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-09", days[0].day)
	assert.Equal(t, "2024-03-10", days[1].day)
	assert.Len(t, days[1].articles, 2)
	assert.Equal(t, time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC), days[1].earliest)
}

// memberWindow bounds only feed the story texts; see TestStoryClustering_UnparsableDateJoinsTodaysChapter
// for the persisted timeline.
func TestMemberWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	first := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC)

	start, end := memberWindow([]entity.Article{
		newArticle("1", nil, nil),
		newArticle("2", ptrTime(last), nil),
		newArticle("3", ptrTime(first), nil),
	}, now)
	assert.Equal(t, first, start)
	assert.Equal(t, last, end)

	start, end = memberWindow([]entity.Article{newArticle("1", nil, nil)}, now)
	assert.Equal(t, now, start)
	assert.Equal(t, time.Unix(0, 0).UTC(), end)
}

func TestTopKeywords(t *testing.T) {
	a := newArticle("1", nil, nil)
	a.Title, a.Description = "Acme merger talks", "Merger approved"
	b := newArticle("2", nil, nil)
	b.Title, b.Description = "Merger delayed", ""

	assert.Equal(t, []string{"merger", "acme"}, topKeywords([]entity.Article{a, b}, 2))
}
