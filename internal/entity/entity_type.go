package entity

// EntityType is the closed set of canonical entity types, plus the trend-only
// keyword and category kinds.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeLocation     EntityType = "location"
	EntityTypeCity         EntityType = "city"
	EntityTypeCountry      EntityType = "country"
	EntityTypeEvent        EntityType = "event"
	EntityTypeOther        EntityType = "other"

	TrendTypeKeyword  EntityType = "keyword"
	TrendTypeCategory EntityType = "category"
)

// NamedEntityTypes lists the canonical types that get their own trend accumulator.
var NamedEntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeLocation,
	EntityTypeCity,
	EntityTypeCountry,
	EntityTypeEvent,
}
