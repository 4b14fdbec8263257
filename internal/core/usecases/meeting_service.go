package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/pkg/geospatial"
)

// SearchRequest is one full meeting-point search.
type SearchRequest struct {
	UserID      string            `json:"user_id"`
	Location1   string            `json:"location_1"`
	Location2   string            `json:"location_2"`
	Mode1       string            `json:"mode1"`
	Mode2       string            `json:"mode2"`
	PlaceQuery  string            `json:"place_query"` // free text, e.g. "quiet cafe"
	RadiusM     int               `json:"radius_meters"`
	MaxResults  int               `json:"max_results"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// SearchResult is the full answer: resolved origins, the fair midpoint with
// diagnostics, a distance report, and the ranked venue list.
type SearchResult struct {
	Origin1    domain.GeocodedLocation  `json:"origin1"`
	Origin2    domain.GeocodedLocation  `json:"origin2"`
	Midpoint   domain.MidpointResult    `json:"midpoint"`
	Distances  domain.MidpointDistances `json:"distances"`
	Preference domain.PlacePreference   `json:"preference"`
	Bounds     domain.Bounds            `json:"search_bounds"`
	Venues     domain.RankedList        `json:"venues"`
}

var knownPlaceTypes = map[string]bool{
	"cafe": true, "restaurant": true, "park": true, "bar": true,
	"library": true, "mall": true, "beach": true,
}

// MeetingService orchestrates a search end to end: geocode both origins,
// compute the time-fair midpoint, find venues around it, rank them, and
// record the search. History and event publishing are best-effort.
type MeetingService struct {
	geocoder    ports.GeocodeService
	midpoints   *MidpointService
	venues      ports.VenueSearchService
	ranking     *RankingService
	interpreter ports.InterpretationService
	history     ports.SearchHistoryRepository
	publisher   ports.EventPublisher
	cache       ports.CacheService
}

// NewMeetingService creates a new MeetingService. geocoder, midpoints,
// venues, and ranking are required; the rest may be nil.
func NewMeetingService(
	geocoder ports.GeocodeService,
	midpoints *MidpointService,
	venues ports.VenueSearchService,
	ranking *RankingService,
	interpreter ports.InterpretationService,
	history ports.SearchHistoryRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
) *MeetingService {
	return &MeetingService{
		geocoder:    geocoder,
		midpoints:   midpoints,
		venues:      venues,
		ranking:     ranking,
		interpreter: interpreter,
		history:     history,
		publisher:   publisher,
		cache:       cache,
	}
}

// Search runs the full pipeline for one request.
func (s *MeetingService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Location1) == "" || strings.TrimSpace(req.Location2) == "" {
		return nil, fmt.Errorf("both locations are required")
	}

	mode1 := domain.ParseTravelMode(req.Mode1)
	mode2 := domain.ParseTravelMode(req.Mode2)

	radius := req.RadiusM
	if radius < 500 || radius > 10000 {
		radius = 2000
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > 20 {
		maxResults = 10
	}

	origin1, err := s.geocode(ctx, req.Location1)
	if err != nil {
		return nil, fmt.Errorf("geocode location 1: %w", err)
	}
	origin2, err := s.geocode(ctx, req.Location2)
	if err != nil {
		return nil, fmt.Errorf("geocode location 2: %w", err)
	}

	midpoint, err := s.midpoints.TimeFair(ctx, origin1.Point, origin2.Point, mode1, mode2)
	if err != nil {
		return nil, fmt.Errorf("midpoint: %w", err)
	}

	distances, err := s.midpoints.DistanceReport(origin1.Point, origin2.Point, midpoint.Point)
	if err != nil {
		return nil, err
	}

	pref := s.interpret(ctx, req.PlaceQuery)

	found, err := s.venues.Search(ctx, midpoint.Point, pref.PlaceType, radius, maxResults)
	if err != nil {
		return nil, fmt.Errorf("venue search: %w", err)
	}

	ranked, err := s.ranking.Rank(ctx, found, origin1.Point, origin2.Point, mode1, mode2, req.Preferences)
	if err != nil {
		return nil, fmt.Errorf("rank venues: %w", err)
	}

	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(midpoint.Point.Lat, midpoint.Point.Lng, float64(radius))
	result := &SearchResult{
		Origin1:    *origin1,
		Origin2:    *origin2,
		Midpoint:   *midpoint,
		Distances:  *distances,
		Preference: pref,
		Bounds:     domain.Bounds{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng},
		Venues:     ranked,
	}

	s.record(ctx, req, result, mode1, mode2, pref.PlaceType)

	return result, nil
}

// geocode resolves an address with read-through caching; geocodes rarely
// change, so cache hits skip the external call entirely.
func (s *MeetingService) geocode(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
	cacheKey := "geocode:" + strings.ToLower(strings.TrimSpace(address))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var loc domain.GeocodedLocation
			if err := json.Unmarshal(data, &loc); err == nil {
				return &loc, nil
			}
		}
	}

	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(loc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 86400)
		}
	}

	return loc, nil
}

// interpret turns the free-text place query into a structured preference.
// Interpretation failures fall back to a keyword match so a flaky AI service
// can never block the search.
func (s *MeetingService) interpret(ctx context.Context, query string) domain.PlacePreference {
	if s.interpreter != nil {
		if pref, err := s.interpreter.InterpretPreference(ctx, query); err == nil && pref != nil && knownPlaceTypes[pref.PlaceType] {
			return *pref
		} else if err != nil {
			slog.Warn("preference interpretation failed, using keyword fallback", "error", err)
		}
	}
	return fallbackPreference(query)
}

// KeywordPreference is the deterministic interpretation path: scan the query
// for a known place type directly, no AI involved.
func KeywordPreference(query string) domain.PlacePreference {
	return fallbackPreference(query)
}

// fallbackPreference scans the query for a known place type; a query that
// names none searches cafes.
func fallbackPreference(query string) domain.PlacePreference {
	lowered := strings.ToLower(query)
	for placeType := range knownPlaceTypes {
		if strings.Contains(lowered, placeType) {
			return domain.PlacePreference{PlaceType: placeType}
		}
	}
	return domain.PlacePreference{PlaceType: "cafe"}
}

func (s *MeetingService) record(ctx context.Context, req SearchRequest, result *SearchResult, mode1, mode2 domain.TravelMode, placeType string) {
	record := &domain.SearchRecord{
		UserID:    req.UserID,
		Location1: req.Location1,
		Location2: req.Location2,
		Mode1:     mode1,
		Mode2:     mode2,
		PlaceType: placeType,
		Midpoint:  result.Midpoint.Point,
		CreatedAt: time.Now(),
	}
	if len(result.Venues) > 0 {
		record.TopVenue = result.Venues[0].Name
	}

	if s.history != nil {
		if err := s.history.Insert(ctx, record); err != nil {
			slog.Warn("record search history", "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSearchCompleted(ctx, record); err != nil {
			slog.Warn("publish search event", "error", err)
		}
	}
}
