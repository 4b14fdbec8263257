package usecases_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/core/usecases"
)

// --- Mock GeocodeService ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (*domain.GeocodedLocation, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return &domain.GeocodedLocation{Point: cnTower, FormattedAddress: address}, nil
}

// --- Mock VenueSearchService ---

type mockVenueSearch struct {
	searchFn func(ctx context.Context, center domain.GeoPoint, category string, radiusMeters, maxResults int) ([]domain.Venue, error)
}

func (m *mockVenueSearch) Search(ctx context.Context, center domain.GeoPoint, category string, radiusMeters, maxResults int) ([]domain.Venue, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, center, category, radiusMeters, maxResults)
	}
	return threeVenues(), nil
}

// --- Mock SearchHistoryRepository ---

type mockHistoryRepo struct {
	insertFn            func(ctx context.Context, record *domain.SearchRecord) error
	listByUserFn        func(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error)
	countByUserFn       func(ctx context.Context, userID string) (int, error)
	frequentLocationsFn func(ctx context.Context, userID string, limit int) (map[string]int, error)
}

func (m *mockHistoryRepo) Insert(ctx context.Context, record *domain.SearchRecord) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, record)
	}
	return nil
}

func (m *mockHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockHistoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockHistoryRepo) FrequentLocations(ctx context.Context, userID string, limit int) (map[string]int, error) {
	if m.frequentLocationsFn != nil {
		return m.frequentLocationsFn(ctx, userID, limit)
	}
	return nil, nil
}

// --- Mock InterpretationService ---

type mockInterpreter struct {
	interpretFn func(ctx context.Context, text string) (*domain.PlacePreference, error)
}

func (m *mockInterpreter) InterpretPreference(ctx context.Context, text string) (*domain.PlacePreference, error) {
	if m.interpretFn != nil {
		return m.interpretFn(ctx, text)
	}
	return nil, fmt.Errorf("interpreter unavailable")
}

// newMeetingService wires a service from mocks. Unset collaborators stay nil
// interfaces rather than becoming non-nil interfaces holding concrete nils.
func newMeetingService(geocoder *mockGeocoder, venues *mockVenueSearch, interpreter *mockInterpreter, history *mockHistoryRepo, publisher *mockPublisher) *usecases.MeetingService {
	oracle := &mockOracle{}
	midpoints := usecases.NewMidpointService(oracle)
	ranking := usecases.NewRankingService(oracle, &mockDelegate{}, nil, 2)

	var interp ports.InterpretationService
	if interpreter != nil {
		interp = interpreter
	}
	var hist ports.SearchHistoryRepository
	if history != nil {
		hist = history
	}
	var pub ports.EventPublisher
	if publisher != nil {
		pub = publisher
	}

	return usecases.NewMeetingService(geocoder, midpoints, venues, ranking, interp, hist, pub, nil)
}

// --- Tests ---

func TestMeetingService_Search_FullPipeline(t *testing.T) {
	geocoder := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
			if strings.Contains(address, "CN Tower") {
				return &domain.GeocodedLocation{Point: cnTower, FormattedAddress: "290 Bremner Blvd, Toronto"}, nil
			}
			return &domain.GeocodedLocation{Point: yorkdale, FormattedAddress: "3401 Dufferin St, Toronto"}, nil
		},
	}
	var recorded *domain.SearchRecord
	history := &mockHistoryRepo{
		insertFn: func(ctx context.Context, record *domain.SearchRecord) error {
			recorded = record
			return nil
		},
	}
	var published *domain.SearchRecord
	publisher := &mockPublisher{
		searchCompletedFn: func(ctx context.Context, record *domain.SearchRecord) error {
			published = record
			return nil
		},
	}

	svc := newMeetingService(geocoder, &mockVenueSearch{}, nil, history, publisher)

	result, err := svc.Search(context.Background(), usecases.SearchRequest{
		UserID:     "user-1",
		Location1:  "CN Tower, Toronto",
		Location2:  "Yorkdale Mall, Toronto",
		Mode1:      "walking",
		Mode2:      "driving",
		PlaceQuery: "quiet cafe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Origin1.FormattedAddress != "290 Bremner Blvd, Toronto" {
		t.Errorf("unexpected origin 1: %s", result.Origin1.FormattedAddress)
	}
	if result.Preference.PlaceType != "cafe" {
		t.Errorf("expected cafe preference, got %s", result.Preference.PlaceType)
	}
	if len(result.Venues) != 3 {
		t.Fatalf("expected 3 ranked venues, got %d", len(result.Venues))
	}
	if result.Venues[0].Rank != 1 {
		t.Errorf("expected rank 1 first, got %d", result.Venues[0].Rank)
	}
	if result.Bounds.MinLat >= result.Bounds.MaxLat {
		t.Error("search bounds are degenerate")
	}

	if recorded == nil {
		t.Fatal("search was not recorded to history")
	}
	if recorded.UserID != "user-1" || recorded.PlaceType != "cafe" {
		t.Errorf("unexpected record %+v", recorded)
	}
	if recorded.TopVenue != result.Venues[0].Name {
		t.Errorf("record should name the top venue, got %q", recorded.TopVenue)
	}
	if published == nil {
		t.Fatal("completed search was not published")
	}
}

func TestMeetingService_Search_MissingLocation(t *testing.T) {
	svc := newMeetingService(&mockGeocoder{}, &mockVenueSearch{}, nil, nil, nil)

	_, err := svc.Search(context.Background(), usecases.SearchRequest{Location1: "CN Tower", Location2: "  "})
	if err == nil {
		t.Error("expected error when a location is missing")
	}
}

func TestMeetingService_Search_ClampsRadiusAndResults(t *testing.T) {
	venues := &mockVenueSearch{
		searchFn: func(ctx context.Context, center domain.GeoPoint, category string, radiusMeters, maxResults int) ([]domain.Venue, error) {
			if radiusMeters != 2000 {
				t.Errorf("expected radius clamped to 2000, got %d", radiusMeters)
			}
			if maxResults != 10 {
				t.Errorf("expected max results clamped to 10, got %d", maxResults)
			}
			return nil, nil
		},
	}
	svc := newMeetingService(&mockGeocoder{}, venues, nil, nil, nil)

	_, err := svc.Search(context.Background(), usecases.SearchRequest{
		Location1:  "A",
		Location2:  "B",
		RadiusM:    50000,
		MaxResults: 99,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMeetingService_Search_GeocodeFailure(t *testing.T) {
	geocoder := &mockGeocoder{
		geocodeFn: func(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
			return nil, fmt.Errorf("zero results")
		},
	}
	svc := newMeetingService(geocoder, &mockVenueSearch{}, nil, nil, nil)

	_, err := svc.Search(context.Background(), usecases.SearchRequest{Location1: "Nowhere", Location2: "Elsewhere"})
	if err == nil {
		t.Error("expected error when geocoding fails")
	}
}

func TestMeetingService_Search_InterpreterFallback(t *testing.T) {
	interpreter := &mockInterpreter{
		interpretFn: func(ctx context.Context, text string) (*domain.PlacePreference, error) {
			return &domain.PlacePreference{PlaceType: "casino"}, nil // not a known type
		},
	}
	svc := newMeetingService(&mockGeocoder{}, &mockVenueSearch{}, interpreter, nil, nil)

	result, err := svc.Search(context.Background(), usecases.SearchRequest{
		Location1:  "A",
		Location2:  "B",
		PlaceQuery: "somewhere to read in a library",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Preference.PlaceType != "library" {
		t.Errorf("expected keyword fallback to library, got %s", result.Preference.PlaceType)
	}
}

func TestMeetingService_Search_HistoryFailureIsBestEffort(t *testing.T) {
	history := &mockHistoryRepo{
		insertFn: func(ctx context.Context, record *domain.SearchRecord) error {
			return fmt.Errorf("connection refused")
		},
	}
	svc := newMeetingService(&mockGeocoder{}, &mockVenueSearch{}, nil, history, nil)

	_, err := svc.Search(context.Background(), usecases.SearchRequest{Location1: "A", Location2: "B"})
	if err != nil {
		t.Fatalf("history failure must not fail the search: %v", err)
	}
}

func TestKeywordPreference(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"quiet cafe for studying", "cafe"},
		{"grab a beer at a bar", "bar"},
		{"nice PARK for a walk", "park"},
		{"", "cafe"},
		{"somewhere fun", "cafe"},
	}

	for _, tc := range cases {
		if got := usecases.KeywordPreference(tc.query); got.PlaceType != tc.want {
			t.Errorf("KeywordPreference(%q) = %s, want %s", tc.query, got.PlaceType, tc.want)
		}
	}
}
