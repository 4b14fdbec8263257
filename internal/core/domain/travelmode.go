package domain

import "strings"

// TravelMode is how one person travels to the meeting point.
type TravelMode string

const (
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
	ModeDriving   TravelMode = "driving"
)

// travelWeights are the relative-reach weights used by the weighted midpoint.
// A slower mode carries a larger weight so the midpoint is pulled toward that
// person, compensating for their lower reach.
var travelWeights = map[TravelMode]float64{
	ModeWalking:   1.0,
	ModeBicycling: 0.8,
	ModeTransit:   0.7,
	ModeDriving:   0.5,
}

// ParseTravelMode normalizes free-form input to a TravelMode.
// Unrecognized input falls back to transit rather than failing.
func ParseTravelMode(s string) TravelMode {
	mode := TravelMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := travelWeights[mode]; !ok {
		return ModeTransit
	}
	return mode
}

// Weight returns the relative-reach weight for the mode.
// Unknown modes weigh the same as transit.
func (m TravelMode) Weight() float64 {
	if w, ok := travelWeights[m]; ok {
		return w
	}
	return travelWeights[ModeTransit]
}
