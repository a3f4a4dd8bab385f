package service

import (
	"strings"
	"testing"
	"time"

	"golang-news-analytics/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrativeAssembler_Deterministic(t *testing.T) {
	n := NewNarrativeAssembler()
	info := StoryInfo{
		EntityName:   "Acme",
		Trend:        entity.SentimentTrendWorsening,
		Start:        time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		SourceCount:  3,
		ArticleCount: 5,
	}

	assert.Equal(t, n.StoryTitle(info), n.StoryTitle(info))
	assert.Equal(t, n.StorySummary(info), n.StorySummary(info))
	assert.Contains(t, n.StoryTitle(info), "Acme")
	assert.Contains(t, n.StorySummary(info), "Acme")

	chapters := []entity.Chapter{
		{Summary: "First day.", PublishedAt: info.Start},
		{Summary: "Second day.", PublishedAt: info.End},
	}
	narrative := n.Narrative(info, chapters)
	assert.Equal(t, narrative, n.Narrative(info, chapters))
	assert.Contains(t, narrative, "First day.")
	assert.Contains(t, narrative, "Second day.")

	preds := n.Predictions(info, info.End)
	require.Len(t, preds, 1)
	assert.NotEmpty(t, preds[0].Content)
	assert.GreaterOrEqual(t, preds[0].Confidence, 0.0)
	assert.LessOrEqual(t, preds[0].Confidence, 1.0)
}

func TestNarrativeAssembler_ChapterText(t *testing.T) {
	n := NewNarrativeAssembler()
	day := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	a := newArticle("1", ptrTime(day), nil)
	a.Title, a.Description = "Acme shares fall", "Investors react to the earnings miss."
	b := newArticle("2", ptrTime(day.Add(time.Hour)), nil)
	b.Title, b.Description = "Acme outlook cut", ""

	assert.Equal(t, "Acme shares fall. Investors react to the earnings miss. (covered by 2 articles)",
		n.ChapterSummary([]entity.Article{b, a}))
	assert.Equal(t, "No details available.", n.ChapterSummary(nil))

	content := n.ChapterContent([]entity.Article{b, a})
	lines := strings.Split(content, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "- Acme shares fall (source-1)"))

	title := n.ChapterTitle(day, "Acme", entity.SentimentTrendNeutral, []entity.Article{a, b})
	assert.NotEmpty(t, title)
	assert.Contains(t, title, "Acme")
}
