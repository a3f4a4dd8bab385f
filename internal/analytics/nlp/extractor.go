package nlp

import (
	"regexp"
	"sort"
	"strings"

	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
)

// MaxContentChars bounds how much article body the secondary pass reads.
const MaxContentChars = 10000

// EntityExtractor recovers named entities from free text when an article arrives without any.
type EntityExtractor interface {
	Extract(title, description, content string) []entity.ArticleEntity
}

// orgSuffixRegex catches capitalized names ending in a corporate or institutional suffix.
var orgSuffixRegex = regexp.MustCompile(`\b((?:[A-Z][\w&.-]*\s){0,4}(?:Inc|Corp|Corporation|Ltd|LLC|PLC|Group|Holdings|Bank|University|Agency|Ministry|Company|Co|Association|Foundation|Institute|Council)\b\.?)`)

type proseExtractor struct{}

// NewEntityExtractor returns an extractor backed by prose's NER model plus
// dictionary and suffix heuristics for countries and organizations.
func NewEntityExtractor() EntityExtractor {
	return &proseExtractor{}
}

func (e *proseExtractor) Extract(title, description, content string) []entity.ArticleEntity {
	body := utils.TruncateRunes(StripHTML(content), MaxContentChars)
	text := utils.CollapseSpaces(strings.Join([]string{title, description, body}, ". "))
	if text == "" {
		return nil
	}

	counts := make(map[entityKey]int)
	display := make(map[entityKey]string)
	add := func(name string, t entity.EntityType) {
		name = strings.TrimSpace(strings.TrimSuffix(name, "."))
		if len([]rune(name)) < MinTermLength {
			return
		}
		k := entityKey{name: NormalizeEntityName(name), typ: t}
		if _, ok := display[k]; !ok {
			display[k] = name
		}
		counts[k]++
	}

	if doc, err := prose.NewDocument(text, prose.WithSegmentation(false)); err == nil {
		for _, ent := range doc.Entities() {
			switch ent.Label {
			case "PERSON":
				add(ent.Text, entity.EntityTypePerson)
			case "ORG", "ORGANIZATION":
				add(ent.Text, entity.EntityTypeOrganization)
			case "GPE", "LOC", "LOCATION":
				if _, isCountry := LookupCountry(ent.Text); isCountry {
					continue // counted by the dictionary pass below
				}
				add(ent.Text, entity.EntityTypeLocation)
			}
		}
	}

	for _, m := range orgSuffixRegex.FindAllString(text, -1) {
		add(m, entity.EntityTypeOrganization)
	}

	for _, c := range ExtractCountries(text) {
		for i := 0; i < c.Count; i++ {
			add(c.Name, entity.EntityTypeCountry)
		}
	}

	out := make([]entity.ArticleEntity, 0, len(counts))
	for k, n := range counts {
		out = append(out, entity.ArticleEntity{Name: display[k], Type: string(k.typ), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type entityKey struct {
	name string
	typ  entity.EntityType
}

// StripHTML returns the visible text of an HTML fragment. Plain text passes through.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script,style").Remove()
	return utils.CollapseSpaces(doc.Text())
}
