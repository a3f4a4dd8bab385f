package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/analytics/repository"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/logger"
	"golang-news-analytics/pkg/telegram"
	"golang-news-analytics/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type groupOutcome string

const (
	outcomeCreated  groupOutcome = "created"
	outcomeExtended groupOutcome = "extended"
	outcomeSkipped  groupOutcome = "skipped"
	outcomeFailed   groupOutcome = "failed"

	primaryImportance      = 10
	maxSecondaryImportance = 9
)

// StoryClusteringService groups recent articles by primary entity into persistent stories.
type StoryClusteringService interface {
	Run(ctx context.Context) (*dto.StoryRunResult, error)
}

// NewStoryClusteringService creates a new StoryClusteringService.
func NewStoryClusteringService(
	cfg *config.Config,
	log *logger.Logger,
	clock utils.Clock,
	articleRepo repository.ArticleRepository,
	storyRepo repository.StoryRepository,
	locker EntityLocker,
	textQueue *TextTaskQueue,
	assembler *NarrativeAssembler,
	relationships *RelationshipBuilder,
	relevancy RelevancyService,
	notifier telegram.Notifier,
	metrics *Metrics,
) StoryClusteringService {
	return &storyClusteringService{
		cfg:           cfg,
		logger:        log,
		clock:         clock,
		articleRepo:   articleRepo,
		storyRepo:     storyRepo,
		locker:        locker,
		textQueue:     textQueue,
		assembler:     assembler,
		relationships: relationships,
		relevancy:     relevancy,
		notifier:      notifier,
		metrics:       metrics,
	}
}

type storyClusteringService struct {
	cfg           *config.Config
	logger        *logger.Logger
	clock         utils.Clock
	articleRepo   repository.ArticleRepository
	storyRepo     repository.StoryRepository
	locker        EntityLocker
	textQueue     *TextTaskQueue
	assembler     *NarrativeAssembler
	relationships *RelationshipBuilder
	relevancy     RelevancyService
	notifier      telegram.Notifier
	metrics       *Metrics
}

// Run makes one clustering pass over the story window. Group-level failures are logged
// and counted; only an unreadable article store fails the run. When ctx expires the
// remaining groups are left for the next run and the result is marked incomplete.
func (s *storyClusteringService) Run(ctx context.Context) (*dto.StoryRunResult, error) {
	now := s.clock.Now()
	articles, truncated, err := fetchWindow(ctx, s.articleRepo, now.Add(-s.cfg.Story.Window), now, s.cfg.Story.ArticleLimit, true)
	if err != nil {
		return nil, err
	}
	if truncated {
		s.logger.Warn("Story window truncated at article limit", logger.IntField("limit", s.cfg.Story.ArticleLimit))
	}

	window := make(map[string]entity.Article, len(articles))
	for _, a := range articles {
		window[a.ID] = a
	}

	clusters := buildClusters(articles, now)
	groups := significantClusters(clusters, s.cfg.Story.MinClusterSize)
	result := &dto.StoryRunResult{
		ArticlesScanned:   len(articles),
		Truncated:         truncated,
		Clusters:          len(clusters),
		SignificantGroups: len(groups),
		StoriesCreated:    []string{},
		StoriesExtended:   []string{},
	}

	var links []ClusterLink
	var created []entity.Story
	for _, g := range groups {
		if !utils.ShouldContinue(ctx, s.logger) {
			result.Incomplete = true
			break
		}

		story, outcome, err := s.resolveGroup(ctx, g, window, now)
		s.metrics.storyOutcome(string(outcome))
		switch outcome {
		case outcomeFailed:
			result.GroupsFailed++
			s.logger.Error("Failed to resolve story group", logger.ErrorField(err),
				logger.StringField("entity", g.displayName), logger.StringField("type", string(g.key.Type)))
			continue
		case outcomeSkipped:
			result.GroupsSkipped++
			continue
		case outcomeCreated:
			result.StoriesCreated = append(result.StoriesCreated, story.ID)
			created = append(created, *story)
		case outcomeExtended:
			result.StoriesExtended = append(result.StoriesExtended, story.ID)
		}
		links = append(links, ClusterLink{Key: g.key, StoryID: story.ID, Cooccurrence: g.cooccurrence})
	}

	if result.Incomplete {
		s.logger.Warn("Story clustering stopped before all groups were processed",
			logger.IntField("processed", len(links)+result.GroupsFailed+result.GroupsSkipped),
			logger.IntField("groups", len(groups)))
		return result, nil
	}

	for _, l := range s.relationships.Link(links) {
		if err := s.storyRepo.AddRelatedStories(ctx, l.StoryID, l.Related); err != nil {
			s.logger.Error("Failed to add related stories", logger.ErrorField(err), logger.StringField("story_id", l.StoryID))
			continue
		}
		result.RelationshipsAdded += len(l.Related)
	}

	if s.relevancy != nil {
		rel, err := s.relevancy.Run(ctx)
		if err != nil {
			s.logger.Error("Failed to rescore stories", logger.ErrorField(err))
		} else {
			result.Relevancy = rel
			result.Incomplete = rel.Incomplete
		}
	}

	s.notifyCreated(created)

	s.logger.Info("Story clustering completed",
		logger.IntField("articles", result.ArticlesScanned),
		logger.IntField("clusters", result.Clusters),
		logger.IntField("significant", result.SignificantGroups),
		logger.IntField("created", len(result.StoriesCreated)),
		logger.IntField("extended", len(result.StoriesExtended)),
		logger.IntField("skipped", result.GroupsSkipped),
		logger.IntField("failed", result.GroupsFailed),
		logger.IntField("relationships", result.RelationshipsAdded),
	)
	if s.cfg.Story.GenerateTextEnabled {
		stats := s.textQueue.Stats()
		s.logger.Debug("Text generation usage",
			logger.IntField("generated", stats.Generated),
			logger.IntField("cache_hits", stats.CacheHits),
			logger.IntField("fallbacks", stats.Fallbacks),
		)
	}
	return result, nil
}

// resolveGroup extends the ongoing story for the group's entity or creates one, holding
// the entity lock for the whole check-then-act.
func (s *storyClusteringService) resolveGroup(ctx context.Context, g *storyCluster, window map[string]entity.Article, now time.Time) (*entity.Story, groupOutcome, error) {
	unlock, err := s.locker.Lock(ctx, entityLockKey(g.key.Type, g.key.Name))
	if err != nil {
		return nil, outcomeFailed, fmt.Errorf("failed to lock entity: %w", err)
	}
	defer unlock()

	trend := ClassifySentimentTrend(g.sentiments)

	existing, err := s.storyRepo.FindOngoingByEntity(ctx, g.displayName, g.key.Type)
	if err != nil {
		return nil, outcomeFailed, err
	}
	if existing != nil {
		return s.extendLocked(ctx, existing.ID, g, window, trend, now)
	}

	story, outcome, err := s.createStory(ctx, g, trend, now)
	if err != nil {
		// another writer may have won the race on the unique index
		if again, findErr := s.storyRepo.FindOngoingByEntity(ctx, g.displayName, g.key.Type); findErr == nil && again != nil {
			return s.extendLocked(ctx, again.ID, g, window, trend, now)
		}
	}
	return story, outcome, err
}

// extendLocked extends a story while holding its story lock. The entity lock alone does
// not cover a story reached through a secondary entity, so the story is re-read under
// the story lock before it is modified.
func (s *storyClusteringService) extendLocked(ctx context.Context, storyID string, g *storyCluster, window map[string]entity.Article, trend entity.SentimentTrend, now time.Time) (*entity.Story, groupOutcome, error) {
	unlock, err := s.locker.Lock(ctx, storyLockKey(storyID))
	if err != nil {
		return nil, outcomeFailed, fmt.Errorf("failed to lock story: %w", err)
	}
	defer unlock()

	current, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		return nil, outcomeFailed, err
	}
	if current == nil {
		return nil, outcomeFailed, fmt.Errorf("story %s not found", storyID)
	}
	return s.extendStory(ctx, current, g, window, trend, now)
}

func (s *storyClusteringService) extendStory(ctx context.Context, existing *entity.Story, g *storyCluster, window map[string]entity.Article, trend entity.SentimentTrend, now time.Time) (*entity.Story, groupOutcome, error) {
	story := existing.Clone()
	known := story.ArticleIDs()

	var fresh []entity.Article
	for _, m := range g.members {
		if _, ok := known[m.ID]; !ok {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		return story, outcomeSkipped, nil
	}

	var touched []int
	for _, day := range groupByDay(fresh, now) {
		idx := -1
		for i := range story.Chapters {
			if utils.DayKey(story.Chapters[i].PublishedAt) == day.day {
				idx = i
				break
			}
		}
		if idx < 0 {
			story.Chapters = append(story.Chapters, s.buildChapter(ctx, g.displayName, trend, day, now))
			continue
		}

		ch := &story.Chapters[idx]
		for _, a := range day.articles {
			ch.Articles = utils.AppendUnique(ch.Articles, a.ID)
		}
		if day.earliest.Before(ch.PublishedAt) {
			ch.PublishedAt = day.earliest
		}
		ch.UpdatedAt = now
		touched = append(touched, idx)
	}

	if len(touched) > 0 {
		byID := s.chapterArticles(ctx, story.Chapters, touched, window)
		for _, idx := range touched {
			ch := &story.Chapters[idx]
			var dayArticles []entity.Article
			for _, id := range ch.Articles {
				if a, ok := byID[id]; ok {
					dayArticles = append(dayArticles, a)
				}
			}
			ch.Summary = s.chapterSummary(ctx, g.displayName, utils.DayKey(ch.PublishedAt), dayArticles)
		}
	}
	sortChapters(story.Chapters)

	story.Categories = utils.AppendUnique(story.Categories, g.categories...)
	story.Countries = utils.AppendUnique(story.Countries, g.countries...)
	story.Keywords = mergeKeywords(story.Keywords, topKeywords(g.members, s.keywordCount()), s.keywordCount())
	story.SentimentTrend = trend

	story.RecomputeTimeline()
	info := StoryInfo{
		EntityName:   g.displayName,
		Trend:        trend,
		Start:        story.Timeline.StartDate,
		End:          story.Timeline.EndDate,
		SourceCount:  distinctSources(g.members),
		ArticleCount: story.TotalArticleCount(),
	}
	story.Narrative = s.narrative(ctx, info, story.Chapters)
	story.Predictions = s.predictions(ctx, info, story.Chapters, now)

	if err := s.storyRepo.Save(ctx, story); err != nil {
		return nil, outcomeFailed, err
	}

	freshIDs := make([]string, 0, len(fresh))
	for _, a := range fresh {
		freshIDs = append(freshIDs, a.ID)
	}
	s.backReference(ctx, story.ID, freshIDs)

	s.logger.Info("Story extended", logger.StringField("story_id", story.ID),
		logger.StringField("entity", g.displayName), logger.IntField("new_articles", len(fresh)))
	return story, outcomeExtended, nil
}

// chapterArticles resolves every article of the touched chapters, reading the ones
// outside the run window from the article store.
func (s *storyClusteringService) chapterArticles(ctx context.Context, chapters []entity.Chapter, touched []int, window map[string]entity.Article) map[string]entity.Article {
	byID := make(map[string]entity.Article)
	var missing []string
	for _, idx := range touched {
		for _, id := range chapters[idx].Articles {
			if a, ok := window[id]; ok {
				byID[id] = a
				continue
			}
			missing = utils.AppendUnique(missing, id)
		}
	}
	if len(missing) == 0 {
		return byID
	}

	found, err := s.articleRepo.FindByIDs(ctx, missing)
	if err != nil {
		s.logger.Warn("Failed to load chapter articles outside the window", logger.ErrorField(err),
			logger.IntField("missing", len(missing)))
		return byID
	}
	for _, a := range found {
		byID[a.ID] = a
	}
	return byID
}

func (s *storyClusteringService) createStory(ctx context.Context, g *storyCluster, trend entity.SentimentTrend, now time.Time) (*entity.Story, groupOutcome, error) {
	days := groupByDay(g.members, now)
	chapters := make(datatypes.JSONSlice[entity.Chapter], 0, len(days))
	for _, day := range days {
		chapters = append(chapters, s.buildChapter(ctx, g.displayName, trend, day, now))
	}
	sortChapters(chapters)

	start, end := memberWindow(g.members, now)
	info := StoryInfo{
		EntityName:   g.displayName,
		Trend:        trend,
		Start:        start,
		End:          end,
		SourceCount:  distinctSources(g.members),
		ArticleCount: len(g.members),
	}
	title, summary := s.storyText(ctx, info, chapters)

	story := &entity.Story{
		ID:                uuid.NewString(),
		Title:             title,
		Summary:           summary,
		Chapters:          chapters,
		Keywords:          pq.StringArray(topKeywords(g.members, s.keywordCount())),
		Entities:          s.storyEntities(g),
		Categories:        pq.StringArray(append([]string{}, g.categories...)),
		Countries:         pq.StringArray(append([]string{}, g.countries...)),
		Timeline:          entity.Timeline{Ongoing: true},
		PrimaryEntityName: g.displayName,
		PrimaryEntityType: g.key.Type,
		SentimentTrend:    trend,
		ViewCount:         0,
		RelatedStories:    pq.StringArray{},
	}
	// the member window only feeds the texts; the stored timeline spans the chapters
	story.RecomputeTimeline()
	story.Narrative = s.narrative(ctx, info, story.Chapters)
	story.Predictions = s.predictions(ctx, info, story.Chapters, now)

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, outcomeFailed, err
	}
	s.backReference(ctx, story.ID, g.memberIDs())

	s.logger.Info("Story created", logger.StringField("story_id", story.ID),
		logger.StringField("entity", g.displayName), logger.IntField("articles", len(g.members)),
		logger.IntField("chapters", len(chapters)))
	return story, outcomeCreated, nil
}

// storyEntities is the primary entity plus the top co-occurring ones.
func (s *storyClusteringService) storyEntities(g *storyCluster) datatypes.JSONSlice[entity.StoryEntity] {
	entities := datatypes.JSONSlice[entity.StoryEntity]{
		entity.NewStoryEntity(g.displayName, g.key.Type, primaryImportance),
	}

	type secondary struct {
		key   ClusterKey
		count int
	}
	ranked := make([]secondary, 0, len(g.cooccurrence))
	for k, n := range g.cooccurrence {
		ranked = append(ranked, secondary{key: k, count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].key.less(ranked[j].key)
	})

	limit := s.cfg.Story.MaxSecondaryEntity
	if limit <= 0 {
		limit = 5
	}
	for i, r := range ranked {
		if i == limit {
			break
		}
		importance := r.count / 2
		if importance > maxSecondaryImportance {
			importance = maxSecondaryImportance
		}
		entities = append(entities, entity.NewStoryEntity(g.displayNameOf(r.key), r.key.Type, importance))
	}
	return entities
}

func (s *storyClusteringService) buildChapter(ctx context.Context, entityName string, trend entity.SentimentTrend, day dayGroup, now time.Time) entity.Chapter {
	ids := make([]string, 0, len(day.articles))
	for _, a := range day.articles {
		ids = utils.AppendUnique(ids, a.ID)
	}

	title := s.assembler.ChapterTitle(day.earliest, entityName, trend, day.articles)
	if text, ok := s.generate(ctx, repository.BuildChapterTitlePrompt(entityName, day.day, day.articles)); ok {
		title = firstLine(text)
	}

	return entity.Chapter{
		Title:       title,
		Summary:     s.chapterSummary(ctx, entityName, day.day, day.articles),
		Content:     s.assembler.ChapterContent(day.articles),
		Articles:    ids,
		PublishedAt: day.earliest,
		UpdatedAt:   now,
	}
}

func (s *storyClusteringService) chapterSummary(ctx context.Context, entityName, day string, articles []entity.Article) string {
	if text, ok := s.generate(ctx, repository.BuildChapterSummaryPrompt(entityName, day, articles)); ok {
		return text
	}
	return s.assembler.ChapterSummary(articles)
}

func (s *storyClusteringService) storyText(ctx context.Context, info StoryInfo, chapters []entity.Chapter) (string, string) {
	title, summary := s.assembler.StoryTitle(info), s.assembler.StorySummary(info)
	text, ok := s.generate(ctx, repository.BuildStoryTextPrompt(info.EntityName, info.Trend, chapters))
	if !ok {
		return title, summary
	}
	var generated dto.StoryTextResult
	if err := json.Unmarshal([]byte(utils.CleanJSONResponse(text)), &generated); err != nil {
		s.logger.Warn("Failed to parse generated story text", logger.ErrorField(err))
		return title, summary
	}
	if strings.TrimSpace(generated.Title) != "" {
		title = strings.TrimSpace(generated.Title)
	}
	if strings.TrimSpace(generated.Summary) != "" {
		summary = strings.TrimSpace(generated.Summary)
	}
	return title, summary
}

func (s *storyClusteringService) narrative(ctx context.Context, info StoryInfo, chapters []entity.Chapter) string {
	if text, ok := s.generate(ctx, repository.BuildNarrativePrompt(info.EntityName, info.Trend, chapters)); ok {
		return text
	}
	return s.assembler.Narrative(info, chapters)
}

func (s *storyClusteringService) predictions(ctx context.Context, info StoryInfo, chapters []entity.Chapter, now time.Time) datatypes.JSONSlice[entity.Prediction] {
	fallback := datatypes.JSONSlice[entity.Prediction](s.assembler.Predictions(info, now))
	text, ok := s.generate(ctx, repository.BuildPredictionsPrompt(info.EntityName, info.Trend, chapters))
	if !ok {
		return fallback
	}
	var generated []dto.PredictionResult
	if err := json.Unmarshal([]byte(utils.CleanJSONResponse(text)), &generated); err != nil {
		s.logger.Warn("Failed to parse generated predictions", logger.ErrorField(err))
		return fallback
	}
	out := make(datatypes.JSONSlice[entity.Prediction], 0, len(generated))
	for _, p := range generated {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		out = append(out, entity.Prediction{
			Content:    strings.TrimSpace(p.Content),
			Confidence: clamp01(p.Confidence),
			CreatedAt:  now,
		})
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (s *storyClusteringService) generate(ctx context.Context, prompt string) (string, bool) {
	if !s.cfg.Story.GenerateTextEnabled {
		return "", false
	}
	return s.textQueue.Generate(ctx, prompt, dto.GenerationOptions{
		Temperature: s.cfg.Gemini.Temperature,
		MaxTokens:   s.cfg.Gemini.MaxTokens,
		TopK:        s.cfg.Gemini.TopK,
		TopP:        s.cfg.Gemini.TopP,
	})
}

// backReference links articles to the story. Failures are item-level and only logged.
func (s *storyClusteringService) backReference(ctx context.Context, storyID string, articleIDs []string) {
	if err := s.articleRepo.AppendStoryReference(ctx, storyID, articleIDs); err != nil {
		s.logger.Error("Failed to back-reference articles", logger.ErrorField(err),
			logger.StringField("story_id", storyID), logger.IntField("articles", len(articleIDs)))
	}
}

func (s *storyClusteringService) notifyCreated(stories []entity.Story) {
	if s.notifier == nil || !s.cfg.Story.NotifyNewStories || len(stories) == 0 {
		return
	}
	for _, msg := range telegram.FormatStoryDigest(stories) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send story digest", logger.ErrorField(err))
			return
		}
	}
}

func (s *storyClusteringService) keywordCount() int {
	if s.cfg.Story.KeywordCount <= 0 {
		return 10
	}
	return s.cfg.Story.KeywordCount
}

func (c *storyCluster) displayNameOf(k ClusterKey) string {
	for _, m := range c.members {
		for _, e := range m.Entities {
			if clusterKeyOf(e) == k {
				return strings.Join(strings.Fields(e.Name), " ")
			}
		}
	}
	return k.Name
}

func sortChapters(chapters []entity.Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].PublishedAt.Before(chapters[j].PublishedAt)
	})
}

func mergeKeywords(existing []string, fresh []string, limit int) pq.StringArray {
	merged := utils.AppendUnique(append([]string{}, existing...), fresh...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return pq.StringArray(merged)
}

func firstLine(text string) string {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	return strings.Trim(line, "\"*# ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
