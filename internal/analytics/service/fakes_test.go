package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/utils"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

var errFake = errors.New("fake failure")

type fakeArticleRepo struct {
	mu         sync.Mutex
	articles   []entity.Article
	err        error
	references map[string][]string
	lastFrom   time.Time
	lastTo     time.Time
	lastLimit  int
	// stored holds articles outside the read window, reachable only by id
	stored []entity.Article
}

func (f *fakeArticleRepo) FindPublishedBetween(ctx context.Context, from, to time.Time, limit int, requireEntities bool) ([]entity.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom, f.lastTo, f.lastLimit = from, to, limit
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Article
	for _, a := range f.articles {
		if requireEntities && len(a.Entities) == 0 {
			continue
		}
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArticleRepo) FindByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Article
	for _, a := range append(append([]entity.Article{}, f.articles...), f.stored...) {
		if utils.ContainsString(ids, a.ID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) AppendStoryReference(ctx context.Context, storyID string, articleIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.references == nil {
		f.references = make(map[string][]string)
	}
	for _, id := range articleIDs {
		f.references[id] = utils.AppendUnique(f.references[id], storyID)
	}
	return nil
}

type fakeTrendRepo struct {
	mu       sync.Mutex
	rows     map[string]entity.Trend
	upserts  int
	replaces int
	err      error
}

func trendKey(t entity.Trend) string {
	return t.Keyword + "|" + string(t.Timeframe) + "|" + string(t.EntityType)
}

func (f *fakeTrendRepo) Upsert(ctx context.Context, trends []entity.Trend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]entity.Trend)
	}
	f.upserts++
	for _, t := range trends {
		if old, ok := f.rows[trendKey(t)]; ok {
			t.FirstSeenAt = old.FirstSeenAt
			merged := utils.AppendUnique(append([]string{}, old.Articles...), t.Articles...)
			sort.Strings(merged)
			t.Articles = pq.StringArray(merged)
		}
		f.rows[trendKey(t)] = t
	}
	return nil
}

func (f *fakeTrendRepo) ReplaceTimeframe(ctx context.Context, timeframe entity.Timeframe, entityTypes []entity.EntityType, trends []entity.Trend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]entity.Trend)
	}
	f.replaces++
	for k, t := range f.rows {
		if t.Timeframe != timeframe {
			continue
		}
		for _, et := range entityTypes {
			if t.EntityType == et {
				delete(f.rows, k)
			}
		}
	}
	for _, t := range trends {
		f.rows[trendKey(t)] = t
	}
	return nil
}

func (f *fakeTrendRepo) FindTop(ctx context.Context, timeframe entity.Timeframe, entityType entity.EntityType, limit int) ([]entity.Trend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Trend
	for _, t := range f.rows {
		if t.Timeframe == timeframe && t.EntityType == entityType {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out, nil
}

func (f *fakeTrendRepo) get(keyword string, tf entity.Timeframe, kind entity.EntityType) (entity.Trend, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[keyword+"|"+string(tf)+"|"+string(kind)]
	return t, ok
}

type fakeStoryRepo struct {
	mu        sync.Mutex
	stories   map[string]*entity.Story
	order     []string
	createErr error
	listErr   error
	saves     int
	scores    map[string]int
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]*entity.Story), scores: make(map[string]int)}
}

func (f *fakeStoryRepo) FindOngoingByEntity(ctx context.Context, name string, entityType entity.EntityType) (*entity.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lower := strings.ToLower(name)
	for _, id := range f.order {
		s := f.stories[id]
		if s.Timeline.Ongoing && s.HasEntity(lower, entityType) {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (f *fakeStoryRepo) FindByID(ctx context.Context, id string) (*entity.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (f *fakeStoryRepo) Create(ctx context.Context, story *entity.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	story.RecomputeTimeline()
	f.stories[story.ID] = story.Clone()
	f.order = append(f.order, story.ID)
	return nil
}

func (f *fakeStoryRepo) Save(ctx context.Context, story *entity.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.stories[story.ID]
	if !ok {
		return errFake
	}
	story.RecomputeTimeline()
	saved := story.Clone()
	saved.ViewCount = old.ViewCount
	saved.RelatedStories = old.RelatedStories
	saved.RelevancyScore = old.RelevancyScore
	f.stories[story.ID] = saved
	f.saves++
	return nil
}

func (f *fakeStoryRepo) AddRelatedStories(ctx context.Context, storyID string, relatedIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return errFake
	}
	s.RelatedStories = pq.StringArray(utils.AppendUnique(append([]string{}, s.RelatedStories...), relatedIDs...))
	return nil
}

func (f *fakeStoryRepo) ListOngoing(ctx context.Context, afterID string, limit int) ([]entity.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]string, 0, len(f.stories))
	for id, s := range f.stories {
		if s.Timeline.Ongoing && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]entity.Story, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.stories[id].Clone())
	}
	return out, nil
}

func (f *fakeStoryRepo) UpdateRelevancyScore(ctx context.Context, storyID string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return errFake
	}
	s.RelevancyScore = score
	f.scores[storyID] = score
	return nil
}

func (f *fakeStoryRepo) all() []*entity.Story {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Story, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.stories[id].Clone())
	}
	return out
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]entity.AnalyticsRun
}

func (f *fakeRunRepo) Create(ctx context.Context, run *entity.AnalyticsRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runs == nil {
		f.runs = make(map[string]entity.AnalyticsRun)
	}
	f.runs[run.ID] = *run
	return nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run *entity.AnalyticsRun) error {
	return f.Create(ctx, run)
}

func (f *fakeRunRepo) FindByID(ctx context.Context, id string) (*entity.AnalyticsRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRunRepo) FindRecent(ctx context.Context, jobType entity.JobType, limit int) ([]entity.AnalyticsRun, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts dto.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

type fakeStrategy struct {
	jobType entity.JobType
	output  string
	err     error
	wait    bool
}

func (f *fakeStrategy) GetType() entity.JobType { return f.jobType }

func (f *fakeStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.output, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Analytics: config.Analytics{
			RunTimeout:        time.Minute,
			TrendArticleLimit: 1000,
			KeywordTopN:       100,
			EntityTopN:        50,
			MinTrendArticles:  1,
			RelevancyPageSize: 2,
		},
		Story: config.Story{
			Window:             72 * time.Hour,
			ArticleLimit:       1000,
			MinClusterSize:     4,
			MaxSecondaryEntity: 5,
			MaxRelatedStories:  5,
			KeywordCount:       10,
			NotifyNewStories:   true,
		},
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrFloat(v float64) *float64 { return &v }

func newArticle(id string, published *time.Time, sentiment *float64, ents ...entity.ArticleEntity) entity.Article {
	return entity.Article{
		ID:          id,
		Title:       "Headline " + id,
		Description: "Description for " + id,
		PublishedAt: published,
		SourceName:  "source-" + id,
		Sentiment:   sentiment,
		Entities:    datatypes.JSONSlice[entity.ArticleEntity](ents),
		CreatedAt:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}
