package service

import (
	"sort"

	"golang-news-analytics/internal/entity"
	"golang-news-analytics/pkg/utils"
)

// ClusterKey identifies a cluster by canonical type and lower-cased entity name.
type ClusterKey struct {
	Type entity.EntityType
	Name string
}

func (k ClusterKey) less(o ClusterKey) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	return k.Name < o.Name
}

// ClusterLink is a cluster that resolved to a story in the current run, with its
// co-occurrence tally of secondary entities.
type ClusterLink struct {
	Key          ClusterKey
	StoryID      string
	Cooccurrence map[ClusterKey]int
}

// StoryLinks are the related story ids discovered for one source story.
type StoryLinks struct {
	StoryID string
	Related []string
}

// RelationshipBuilder derives directed related-story edges from co-occurrence tallies.
type RelationshipBuilder struct {
	maxRelated int
}

// NewRelationshipBuilder creates a RelationshipBuilder keeping up to maxRelated candidates per cluster.
func NewRelationshipBuilder(maxRelated int) *RelationshipBuilder {
	if maxRelated <= 0 {
		maxRelated = 5
	}
	return &RelationshipBuilder{maxRelated: maxRelated}
}

// Link returns, per source story in first-seen order, the stories its cluster's top
// co-occurring entities resolved to. Only entities that resolved in this run count, and
// a story never links to itself. Edges are one-way.
func (b *RelationshipBuilder) Link(clusters []ClusterLink) []StoryLinks {
	resolved := make(map[ClusterKey]string, len(clusters))
	for _, c := range clusters {
		resolved[c.Key] = c.StoryID
	}

	var out []StoryLinks
	index := make(map[string]int)
	for _, c := range clusters {
		type candidate struct {
			key   ClusterKey
			count int
		}
		var candidates []candidate
		for k, n := range c.Cooccurrence {
			if _, ok := resolved[k]; ok {
				candidates = append(candidates, candidate{key: k, count: n})
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].count != candidates[j].count {
				return candidates[i].count > candidates[j].count
			}
			return candidates[i].key.less(candidates[j].key)
		})
		if len(candidates) > b.maxRelated {
			candidates = candidates[:b.maxRelated]
		}

		for _, cand := range candidates {
			related := resolved[cand.key]
			if related == c.StoryID {
				continue
			}
			i, ok := index[c.StoryID]
			if !ok {
				i = len(out)
				index[c.StoryID] = i
				out = append(out, StoryLinks{StoryID: c.StoryID})
			}
			if !utils.ContainsString(out[i].Related, related) {
				out[i].Related = append(out[i].Related, related)
			}
		}
	}
	return out
}
