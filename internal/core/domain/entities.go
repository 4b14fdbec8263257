package domain

import (
	"time"
)

// MidpointMethod identifies which strategy produced a midpoint.
type MidpointMethod string

const (
	MethodSimpleGeographic MidpointMethod = "simple_geographic"
	MethodWeightedByMode   MidpointMethod = "weighted_by_travel_mode"
	MethodTimeFair         MidpointMethod = "time_fair_iterative"
)

// MidpointResult is a candidate meeting coordinate plus diagnostics for the
// strategy that produced it. Built once per search and immutable afterwards.
type MidpointResult struct {
	Point  GeoPoint       `json:"point"`
	Method MidpointMethod `json:"method"`

	// Weighted-midpoint diagnostics.
	Mode1        TravelMode `json:"mode1,omitempty"`
	Mode2        TravelMode `json:"mode2,omitempty"`
	Weight1      float64    `json:"weight1,omitempty"`
	Weight2      float64    `json:"weight2,omitempty"`
	AdjustmentKm float64    `json:"adjustment_km,omitempty"`

	// Time-fair diagnostics. Populated only for MethodTimeFair.
	TravelTime1       string  `json:"travel_time_person1,omitempty"`
	TravelTime2       string  `json:"travel_time_person2,omitempty"`
	TimeDifferenceMin float64 `json:"time_difference_minutes,omitempty"`
	FairnessRatio     float64 `json:"fairness_ratio,omitempty"`
	Iterations        int     `json:"iterations,omitempty"`
}

// MidpointDistances reports each person's great-circle distance to a midpoint
// and the resulting distance fairness.
type MidpointDistances struct {
	Distance1Km   float64 `json:"distance1_km"`
	Distance2Km   float64 `json:"distance2_km"`
	FairnessRatio float64 `json:"fairness_ratio"`
}

// TravelMeasurement is the routing oracle's normalized answer for one
// origin→destination pair at one travel mode.
type TravelMeasurement struct {
	DurationSeconds float64    `json:"duration_seconds"`
	DurationText    string     `json:"duration_text"`
	DistanceMeters  float64    `json:"distance_meters"`
	DistanceText    string     `json:"distance_text"`
	Mode            TravelMode `json:"mode"`
}

// TravelComparison measures both people's travel to one destination.
type TravelComparison struct {
	Person1           TravelMeasurement `json:"person1"`
	Person2           TravelMeasurement `json:"person2"`
	FairnessRatio     float64           `json:"fairness_ratio"`
	TimeDifferenceSec float64           `json:"time_difference_seconds"`
	TimeDifferenceMin float64           `json:"time_difference_minutes"`
}

// Venue is a candidate meeting place sourced from the venue search service
// and enriched in place by the ranking engine.
type Venue struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Location    GeoPoint `json:"location"`
	Rating      *float64 `json:"rating,omitempty"`       // nil = unrated
	ReviewCount int      `json:"review_count"`
	PriceLevel  *int     `json:"price_level,omitempty"`  // nil = unknown
	OpenNow     *bool    `json:"open_now,omitempty"`     // nil = unknown
	PlaceID     string   `json:"place_id,omitempty"`
	Categories  []string `json:"categories,omitempty"`

	// Enrichment fields, attached by the ranking engine.
	TravelFairness *float64 `json:"travel_fairness,omitempty"` // nil = unknown
	TimePerson1    string   `json:"time_person1,omitempty"`
	TimePerson2    string   `json:"time_person2,omitempty"`
	EnrichError    string   `json:"enrich_error,omitempty"`

	Rank      int      `json:"rank,omitempty"` // 1-based, assigned by ranking
	Score     *float64 `json:"score,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// RankedList is an ordered recommendation list. Ranks run 1..N with no gaps
// and no duplicates; it is rebuilt fresh on every ranking invocation.
type RankedList []Venue

// VenueSummary is the flattened view of an enriched venue handed to the
// ranking delegate. TravelFairness carries "unknown" when enrichment failed.
type VenueSummary struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Rating         any    `json:"rating"`
	Reviews        int    `json:"reviews"`
	OpenNow        any    `json:"open_now"`
	PriceLevel     any    `json:"price_level"`
	TravelFairness any    `json:"travel_fairness"`
	TimePerson1    string `json:"time_person1"`
	TimePerson2    string `json:"time_person2"`
}

// RankOrder is the ranking delegate's verdict: a permutation over a prefix of
// the input indices plus free-text reasoning keyed by input index.
type RankOrder struct {
	Indices   []int          `json:"ranked_indices"`
	Reasoning map[int]string `json:"reasoning"`
}

// GeocodedLocation is a resolved free-text address.
type GeocodedLocation struct {
	Point            GeoPoint `json:"point"`
	FormattedAddress string   `json:"formatted_address"`
}

// PlacePreference is the structured interpretation of a free-text place
// request such as "quiet cafe for studying".
type PlacePreference struct {
	PlaceType string   `json:"place_type"`
	Keywords  []string `json:"keywords,omitempty"`
	Priority  string   `json:"priority,omitempty"` // quiet | popular | cheap | quality
}

// SearchRecord is one completed meeting-point search, persisted as history.
type SearchRecord struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	Location1 string     `json:"location_1"`
	Location2 string     `json:"location_2"`
	Mode1     TravelMode `json:"mode1"`
	Mode2     TravelMode `json:"mode2"`
	PlaceType string     `json:"place_type"`
	Midpoint  GeoPoint   `json:"midpoint"`
	TopVenue  string     `json:"top_venue,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Preference is one learned user preference ("memory bank" entry).
type Preference struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
