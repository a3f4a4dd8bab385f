package service

import (
	"testing"

	"golang-news-analytics/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyAcme   = ClusterKey{Type: entity.EntityTypeOrganization, Name: "acme"}
	keyGlobex = ClusterKey{Type: entity.EntityTypeOrganization, Name: "globex"}
	keyBerlin = ClusterKey{Type: entity.EntityTypeCity, Name: "berlin"}
	keyParis  = ClusterKey{Type: entity.EntityTypeCity, Name: "paris"}
)

func TestRelationshipBuilder_LinksAreDirected(t *testing.T) {
	links := NewRelationshipBuilder(5).Link([]ClusterLink{
		{Key: keyAcme, StoryID: "s-acme", Cooccurrence: map[ClusterKey]int{keyGlobex: 3, keyBerlin: 1, keyParis: 7}},
		{Key: keyGlobex, StoryID: "s-globex", Cooccurrence: map[ClusterKey]int{}},
		{Key: keyBerlin, StoryID: "s-berlin", Cooccurrence: map[ClusterKey]int{}},
	})

	require.Len(t, links, 1)
	assert.Equal(t, "s-acme", links[0].StoryID)
	// paris never resolved to a story in this run
	assert.Equal(t, []string{"s-globex", "s-berlin"}, links[0].Related)
}

func TestRelationshipBuilder_KeepsTopCandidates(t *testing.T) {
	links := NewRelationshipBuilder(1).Link([]ClusterLink{
		{Key: keyAcme, StoryID: "s-acme", Cooccurrence: map[ClusterKey]int{keyGlobex: 1, keyBerlin: 4}},
		{Key: keyGlobex, StoryID: "s-globex"},
		{Key: keyBerlin, StoryID: "s-berlin"},
	})

	require.Len(t, links, 1)
	assert.Equal(t, []string{"s-berlin"}, links[0].Related)
}

func TestRelationshipBuilder_SkipsSelfLinks(t *testing.T) {
	links := NewRelationshipBuilder(5).Link([]ClusterLink{
		{Key: keyAcme, StoryID: "s-1", Cooccurrence: map[ClusterKey]int{keyGlobex: 2}},
		{Key: keyGlobex, StoryID: "s-1", Cooccurrence: map[ClusterKey]int{keyAcme: 2}},
	})

	assert.Empty(t, links)
}
