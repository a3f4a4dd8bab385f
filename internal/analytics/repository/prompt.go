package repository

import (
	"fmt"
	"strings"

	"golang-news-analytics/internal/entity"
)

const promptArticleLimit = 12

func writeArticleLines(b *strings.Builder, articles []entity.Article) {
	for i, a := range articles {
		if i == promptArticleLimit {
			fmt.Fprintf(b, "... and %d more articles\n", len(articles)-promptArticleLimit)
			break
		}
		published := "N/A"
		if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(b, "%d. [%s] %s (%s)\n   %s\n", i+1, published, a.Title, a.SourceName, a.Description)
	}
}

// BuildChapterTitlePrompt asks for a one-line headline for a day of coverage.
func BuildChapterTitlePrompt(entityName, date string, articles []entity.Article) string {
	var b strings.Builder
	writeArticleLines(&b, articles)
	return fmt.Sprintf(`You are a news editor. Write one headline (max 12 words, no quotes) for the coverage of "%s" on %s.

Articles:
%s
Reply with the headline only.`, entityName, date, b.String())
}

// BuildChapterSummaryPrompt asks for a short summary of a day of coverage.
func BuildChapterSummaryPrompt(entityName, date string, articles []entity.Article) string {
	var b strings.Builder
	writeArticleLines(&b, articles)
	return fmt.Sprintf(`Summarize in 2-3 sentences what happened with "%s" on %s, based on these articles:

%s
Reply with the summary only.`, entityName, date, b.String())
}

// BuildStoryTextPrompt asks for a story title and summary as JSON.
func BuildStoryTextPrompt(entityName string, trend entity.SentimentTrend, chapters []entity.Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		fmt.Fprintf(&b, "- %s: %s\n", ch.PublishedAt.UTC().Format("2006-01-02"), ch.Summary)
	}
	return fmt.Sprintf(`You are a news editor tracking an evolving story about "%s" (overall sentiment: %s).

Chapters:
%s
Respond in JSON:
{
  "title": "<headline, max 12 words>",
  "summary": "<2-3 sentences>"
}`, entityName, trend, b.String())
}

// BuildNarrativePrompt asks for a narrative across all chapters.
func BuildNarrativePrompt(entityName string, trend entity.SentimentTrend, chapters []entity.Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		fmt.Fprintf(&b, "## %s\n%s\n\n", ch.Title, ch.Summary)
	}
	return fmt.Sprintf(`Write a cohesive narrative (3-5 paragraphs, plain text) of how the story around "%s" developed. Sentiment trend: %s.

%s`, entityName, trend, b.String())
}

// BuildPredictionsPrompt asks for forward-looking predictions as a JSON array.
func BuildPredictionsPrompt(entityName string, trend entity.SentimentTrend, chapters []entity.Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		fmt.Fprintf(&b, "- %s\n", ch.Summary)
	}
	return fmt.Sprintf(`Based on the coverage of "%s" (sentiment trend: %s), give up to 3 predictions of what may happen next.

%s
Respond in JSON:
[
  {"content": "<prediction>", "confidence": <float 0.0-1.0>}
]`, entityName, trend, b.String())
}
