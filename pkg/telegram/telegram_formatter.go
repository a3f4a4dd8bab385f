package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-news-analytics/internal/entity"
)

// MaxMessageLen keeps messages under Telegram's 4096 character limit.
const MaxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")

// EscapeMarkdown escapes the characters legacy Markdown mode treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatStoryDigest formats newly created stories into one or more Markdown messages,
// each no longer than MaxMessageLen.
func FormatStoryDigest(stories []entity.Story) []string {
	if len(stories) == 0 {
		return []string{"No new stories in this run."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📰 *New Stories (%d)* 📰\n\n", len(stories)))
		} else {
			current.WriteString(fmt.Sprintf("---*New Stories Part %d*---\n\n", part))
		}
	}
	startNewPart()

	for _, s := range stories {
		entry := formatStoryEntry(&s)
		if current.Len()+len(entry) > MaxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}
	messages = append(messages, current.String())
	return messages
}

func formatStoryEntry(s *entity.Story) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s*\n", sentimentIcon(s.SentimentTrend), EscapeMarkdown(s.Title)))
	if s.Summary != "" {
		b.WriteString(fmt.Sprintf("💬 %s\n", EscapeMarkdown(s.Summary)))
	}
	b.WriteString(fmt.Sprintf("🏷 %s (%s) · %d articles · %d chapters\n",
		EscapeMarkdown(s.PrimaryEntityName), s.PrimaryEntityType, s.TotalArticleCount(), len(s.Chapters)))
	if len(s.Countries) > 0 {
		b.WriteString(fmt.Sprintf("🌍 %s\n", EscapeMarkdown(strings.Join(s.Countries, ", "))))
	}
	b.WriteString("\n")
	return b.String()
}

func sentimentIcon(trend entity.SentimentTrend) string {
	switch trend {
	case entity.SentimentTrendImproving, entity.SentimentTrendPositive:
		return "📈"
	case entity.SentimentTrendWorsening, entity.SentimentTrendNegative:
		return "📉"
	}
	return "📌"
}

// FormatRunFailureAlert formats a failed analytics run.
func FormatRunFailureAlert(at time.Time, jobName string, jobType entity.JobType, errMsg string) string {
	return fmt.Sprintf("📛 [RUN FAILED]\n%s\n🔧 %s (%s)\n⚠️ %s\n",
		at.UTC().Format("2006-01-02 15:04:05 MST"), EscapeMarkdown(jobName), jobType, EscapeMarkdown(errMsg))
}
