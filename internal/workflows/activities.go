package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/core/usecases"
)

// SearchActivities holds the activity implementations for the meeting
// search workflow.
type SearchActivities struct {
	Geocoder  ports.GeocodeService
	Midpoints *usecases.MidpointService
	Venues    ports.VenueSearchService
	Ranking   *usecases.RankingService
	History   ports.SearchHistoryRepository
}

// Geocode resolves one address to coordinates.
func (a *SearchActivities) Geocode(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
	loc, err := a.Geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	return loc, nil
}

// ComputeMidpoint computes the time-fair midpoint between two points.
func (a *SearchActivities) ComputeMidpoint(ctx context.Context, p1, p2 domain.GeoPoint, mode1, mode2 string) (*domain.MidpointResult, error) {
	return a.Midpoints.TimeFair(ctx, p1, p2,
		domain.ParseTravelMode(mode1), domain.ParseTravelMode(mode2))
}

// FindVenues searches for candidate venues around the midpoint. The free-text
// place query is mapped to a category with the keyword fallback; the AI
// interpreter stays out of the durable path.
func (a *SearchActivities) FindVenues(ctx context.Context, center domain.GeoPoint, placeQuery string, radiusM, maxResults int) ([]domain.Venue, error) {
	if radiusM < 500 || radiusM > 10000 {
		radiusM = 2000
	}
	if maxResults <= 0 || maxResults > 20 {
		maxResults = 10
	}
	pref := usecases.KeywordPreference(placeQuery)
	return a.Venues.Search(ctx, center, pref.PlaceType, radiusM, maxResults)
}

// RankVenues enriches and ranks the candidate venues.
func (a *SearchActivities) RankVenues(ctx context.Context, venues []domain.Venue, p1, p2 domain.GeoPoint, mode1, mode2 string) (domain.RankedList, error) {
	return a.Ranking.Rank(ctx, venues, p1, p2,
		domain.ParseTravelMode(mode1), domain.ParseTravelMode(mode2), nil)
}

// RecordHistory persists one completed search.
func (a *SearchActivities) RecordHistory(ctx context.Context, record *domain.SearchRecord) error {
	if a.History == nil {
		return nil
	}
	return a.History.Insert(ctx, record)
}
