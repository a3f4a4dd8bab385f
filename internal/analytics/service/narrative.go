package service

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"golang-news-analytics/internal/analytics/nlp"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/utils"
)

var sentimentPhrases = map[entity.SentimentTrend]string{
	entity.SentimentTrendImproving: "Breakthrough",
	entity.SentimentTrendWorsening: "Faces Challenges",
	entity.SentimentTrendPositive:  "Success Story",
	entity.SentimentTrendNegative:  "Crisis Deepens",
	entity.SentimentTrendNeutral:   "Developments",
}

var trendDescriptions = map[entity.SentimentTrend]string{
	entity.SentimentTrendImproving: "improving",
	entity.SentimentTrendWorsening: "deteriorating",
	entity.SentimentTrendPositive:  "largely positive",
	entity.SentimentTrendNegative:  "largely negative",
	entity.SentimentTrendNeutral:   "mixed",
}

// topicWords is scanned in order; the most frequent one in a day's coverage prefixes the chapter title.
var topicWords = []string{
	"election", "economy", "market", "trade", "climate", "health", "technology",
	"security", "energy", "policy", "court", "investigation", "deal", "merger",
	"earnings", "protest", "conflict", "summit", "scandal",
}

var storyTitleTemplates = []string{
	"%[1]s: %[2]s",
	"The %[1]s Story: %[2]s",
	"%[1]s in Focus: %[2]s",
	"Inside the %[1]s %[2]s",
}

var storySummaryTemplates = []string{
	"%[1]s has drawn %[2]d articles from %[3]d sources between %[4]s and %[5]s, with %[6]s sentiment.",
	"Between %[4]s and %[5]s, %[3]d sources published %[2]d articles about %[1]s. Coverage has been %[6]s.",
	"Coverage of %[1]s spans %[4]s to %[5]s: %[2]d articles across %[3]d sources, and the tone is %[6]s.",
}

var narrativeIntros = []string{
	"The story around %[1]s unfolded across %[2]d chapters between %[3]s and %[4]s.",
	"From %[3]s to %[4]s, %[1]s was the subject of %[2]d chapters of coverage.",
	"%[1]s has been in the news from %[3]s through %[4]s, across %[2]d chapters.",
}

var predictionTemplates = map[entity.SentimentTrend]string{
	entity.SentimentTrendImproving: "Momentum around %s is likely to keep improving in the coming days.",
	entity.SentimentTrendWorsening: "%s is likely to face further challenges before the situation stabilizes.",
	entity.SentimentTrendPositive:  "Positive coverage of %s is expected to continue.",
	entity.SentimentTrendNegative:  "Pressure on %s is expected to persist in upcoming coverage.",
	entity.SentimentTrendNeutral:   "Coverage of %s is expected to continue as developments unfold.",
}

var predictionConfidence = map[entity.SentimentTrend]float64{
	entity.SentimentTrendImproving: 0.6,
	entity.SentimentTrendWorsening: 0.6,
	entity.SentimentTrendPositive:  0.55,
	entity.SentimentTrendNegative:  0.55,
	entity.SentimentTrendNeutral:   0.5,
}

const (
	chapterDateLayout = "January 2, 2006"
	rangeDateLayout   = "Jan 2, 2006"
)

// StoryInfo is what the story-level templates are filled from.
type StoryInfo struct {
	EntityName   string
	Trend        entity.SentimentTrend
	Start        time.Time
	End          time.Time
	SourceCount  int
	ArticleCount int
}

// NarrativeAssembler produces deterministic, never-empty text for chapters and stories.
type NarrativeAssembler struct{}

// NewNarrativeAssembler creates a new NarrativeAssembler.
func NewNarrativeAssembler() *NarrativeAssembler {
	return &NarrativeAssembler{}
}

// ChapterTitle builds "{date}: {[Topic ]entity} {phrase}".
func (n *NarrativeAssembler) ChapterTitle(day time.Time, entityName string, trend entity.SentimentTrend, articles []entity.Article) string {
	subject := entityName
	if topic := scanTopic(articles); topic != "" {
		subject = strings.ToUpper(topic[:1]) + topic[1:] + " " + entityName
	}
	return fmt.Sprintf("%s: %s %s", day.UTC().Format(chapterDateLayout), subject, sentimentPhrase(trend))
}

// ChapterSummary picks the earliest article with both title and description and notes the
// coverage size when there is more than one article.
func (n *NarrativeAssembler) ChapterSummary(articles []entity.Article) string {
	summary := "No details available."
	if best := mostComplete(articles); best != nil {
		switch {
		case best.Title != "" && best.Description != "":
			summary = best.Title + ". " + best.Description
		case best.Title != "":
			summary = best.Title
		case best.Description != "":
			summary = best.Description
		}
	}
	if len(articles) > 1 {
		summary += fmt.Sprintf(" (covered by %d articles)", len(articles))
	}
	return summary
}

// ChapterContent lists the day's headlines with their sources.
func (n *NarrativeAssembler) ChapterContent(articles []entity.Article) string {
	var b strings.Builder
	for _, a := range sortedByPublish(articles) {
		title := a.Title
		if title == "" {
			title = "Untitled article"
		}
		b.WriteString("- " + title)
		if a.SourceName != "" {
			b.WriteString(" (" + a.SourceName + ")")
		}
		if a.Description != "" {
			b.WriteString(": " + a.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// StoryTitle fills a title template chosen by the entity name.
func (n *NarrativeAssembler) StoryTitle(info StoryInfo) string {
	tpl := pickTemplate(storyTitleTemplates, info.EntityName)
	return fmt.Sprintf(tpl, info.EntityName, sentimentPhrase(info.Trend))
}

// StorySummary fills a summary template chosen by the entity name.
func (n *NarrativeAssembler) StorySummary(info StoryInfo) string {
	tpl := pickTemplate(storySummaryTemplates, info.EntityName)
	return fmt.Sprintf(tpl, info.EntityName, info.ArticleCount, info.SourceCount,
		formatRangeDate(info.Start), formatRangeDate(info.End), trendDescription(info.Trend))
}

// Narrative joins an intro with one paragraph per chapter.
func (n *NarrativeAssembler) Narrative(info StoryInfo, chapters []entity.Chapter) string {
	var b strings.Builder
	tpl := pickTemplate(narrativeIntros, info.EntityName)
	fmt.Fprintf(&b, tpl, info.EntityName, len(chapters), formatRangeDate(info.Start), formatRangeDate(info.End))
	for _, ch := range chapters {
		fmt.Fprintf(&b, "\n\n%s: %s", ch.PublishedAt.UTC().Format(chapterDateLayout), ch.Summary)
	}
	fmt.Fprintf(&b, "\n\nOverall, sentiment in the coverage has been %s.", trendDescription(info.Trend))
	return b.String()
}

// Predictions returns a single trend-based prediction.
func (n *NarrativeAssembler) Predictions(info StoryInfo, now time.Time) []entity.Prediction {
	trend := info.Trend
	if _, ok := predictionTemplates[trend]; !ok {
		trend = entity.SentimentTrendNeutral
	}
	return []entity.Prediction{{
		Content:    fmt.Sprintf(predictionTemplates[trend], info.EntityName),
		Confidence: predictionConfidence[trend],
		CreatedAt:  now,
	}}
}

func sentimentPhrase(trend entity.SentimentTrend) string {
	if p, ok := sentimentPhrases[trend]; ok {
		return p
	}
	return sentimentPhrases[entity.SentimentTrendNeutral]
}

func trendDescription(trend entity.SentimentTrend) string {
	if d, ok := trendDescriptions[trend]; ok {
		return d
	}
	return trendDescriptions[entity.SentimentTrendNeutral]
}

func formatRangeDate(t time.Time) string {
	if t.IsZero() {
		return "an unknown date"
	}
	return t.UTC().Format(rangeDateLayout)
}

// pickTemplate selects a template by FNV-32a hash of key.
func pickTemplate(templates []string, key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(key)))
	return templates[h.Sum32()%uint32(len(templates))]
}

// scanTopic returns the most frequent topic word in the titles and descriptions,
// ties broken by vocabulary order, or "" when none appears.
func scanTopic(articles []entity.Article) string {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, tok := range nlp.Tokenize(a.Title + " " + a.Description) {
			counts[tok]++
		}
	}
	best, bestCount := "", 0
	for _, w := range topicWords {
		c := counts[w] + counts[w+"s"]
		if c > bestCount {
			best, bestCount = w, c
		}
	}
	return best
}

// mostComplete returns the first article by publish time that has both title and description,
// falling back to the first article.
func mostComplete(articles []entity.Article) *entity.Article {
	sorted := sortedByPublish(articles)
	if len(sorted) == 0 {
		return nil
	}
	for i := range sorted {
		if sorted[i].Title != "" && sorted[i].Description != "" {
			return &sorted[i]
		}
	}
	return &sorted[0]
}

// sortedByPublish orders articles by publish time; unparsable dates go last.
func sortedByPublish(articles []entity.Article) []entity.Article {
	sorted := append([]entity.Article(nil), articles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedAt, sorted[j].PublishedAt
		aValid, bValid := utils.IsValidTime(a), utils.IsValidTime(b)
		if aValid != bValid {
			return aValid
		}
		if !aValid {
			return false
		}
		return a.Before(*b)
	})
	return sorted
}
