package nlp

import (
	"strings"

	"golang-news-analytics/internal/entity"
)

// entityTypeSynonyms maps the tags emitted by upstream extractors onto the canonical set.
// City tags stay separate from location; upstream folded them inconsistently.
var entityTypeSynonyms = map[string]entity.EntityType{
	"person":        entity.EntityTypePerson,
	"people":        entity.EntityTypePerson,
	"per":           entity.EntityTypePerson,
	"human":         entity.EntityTypePerson,
	"name":          entity.EntityTypePerson,
	"organization":  entity.EntityTypeOrganization,
	"organisation":  entity.EntityTypeOrganization,
	"org":           entity.EntityTypeOrganization,
	"company":       entity.EntityTypeOrganization,
	"corporation":   entity.EntityTypeOrganization,
	"institution":   entity.EntityTypeOrganization,
	"agency":        entity.EntityTypeOrganization,
	"location":      entity.EntityTypeLocation,
	"loc":           entity.EntityTypeLocation,
	"place":         entity.EntityTypeLocation,
	"gpe":           entity.EntityTypeLocation,
	"region":        entity.EntityTypeLocation,
	"state":         entity.EntityTypeLocation,
	"province":      entity.EntityTypeLocation,
	"city":          entity.EntityTypeCity,
	"town":          entity.EntityTypeCity,
	"municipality":  entity.EntityTypeCity,
	"country":       entity.EntityTypeCountry,
	"nation":        entity.EntityTypeCountry,
	"event":         entity.EntityTypeEvent,
	"incident":      entity.EntityTypeEvent,
	"election":      entity.EntityTypeEvent,
	"sports_event":  entity.EntityTypeEvent,
	"natural_event": entity.EntityTypeEvent,
}

// NormalizeEntityType maps a raw entity type tag onto the canonical set.
// Unknown or empty tags map to other.
func NormalizeEntityType(raw string) entity.EntityType {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if t, ok := entityTypeSynonyms[key]; ok {
		return t
	}
	// plural tags such as "organizations" or "cities"
	if strings.HasSuffix(key, "ies") {
		if t, ok := entityTypeSynonyms[strings.TrimSuffix(key, "ies")+"y"]; ok {
			return t
		}
	}
	if strings.HasSuffix(key, "s") {
		if t, ok := entityTypeSynonyms[strings.TrimSuffix(key, "s")]; ok {
			return t
		}
	}
	return entity.EntityTypeOther
}

// NormalizeEntityName produces the accumulator key for an entity name.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
