package googlemaps_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/middleground/internal/adapters/googlemaps"
	"github.com/samirrijal/middleground/internal/core/domain"
)

func mapsServer(t *testing.T, handler http.HandlerFunc) *googlemaps.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return googlemaps.NewClient("test-key", server.URL)
}

func TestGeocoder_Geocode(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("address") != "CN Tower, Toronto" {
			t.Errorf("unexpected address %q", r.URL.Query().Get("address"))
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("api key missing from request")
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [{
				"formatted_address": "290 Bremner Blvd, Toronto, ON",
				"geometry": {"location": {"lat": 43.6426, "lng": -79.3871}}
			}]
		}`)
	})

	loc, err := googlemaps.NewGeocoder(client).Geocode(context.Background(), "CN Tower, Toronto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Point.Lat != 43.6426 || loc.Point.Lng != -79.3871 {
		t.Errorf("unexpected point %+v", loc.Point)
	}
	if loc.FormattedAddress != "290 Bremner Blvd, Toronto, ON" {
		t.Errorf("unexpected address %q", loc.FormattedAddress)
	}
}

func TestGeocoder_Geocode_ZeroResults(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	})

	_, err := googlemaps.NewGeocoder(client).Geocode(context.Background(), "gibberish")
	if err == nil {
		t.Error("expected error for ZERO_RESULTS")
	}
}

func TestDistanceMatrix_Measure(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") != "transit" {
			t.Errorf("unexpected mode %q", r.URL.Query().Get("mode"))
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"duration": {"value": 1260, "text": "21 mins"},
				"distance": {"value": 10500, "text": "10.5 km"}
			}]}]
		}`)
	})

	m, err := googlemaps.NewDistanceMatrix(client).Measure(
		context.Background(),
		domain.GeoPoint{Lat: 43.6426, Lng: -79.3871},
		domain.GeoPoint{Lat: 43.7253, Lng: -79.4513},
		domain.ModeTransit,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.DurationSeconds != 1260 || m.DurationText != "21 mins" {
		t.Errorf("unexpected duration %v / %q", m.DurationSeconds, m.DurationText)
	}
	if m.DistanceMeters != 10500 {
		t.Errorf("unexpected distance %v", m.DistanceMeters)
	}
	if m.Mode != domain.ModeTransit {
		t.Errorf("unexpected mode %s", m.Mode)
	}
}

func TestDistanceMatrix_Measure_NoRoute(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`)
	})

	_, err := googlemaps.NewDistanceMatrix(client).Measure(
		context.Background(),
		domain.GeoPoint{Lat: 43.6, Lng: -79.4},
		domain.GeoPoint{Lat: 51.5, Lng: -0.1},
		domain.ModeDriving,
	)
	if err == nil {
		t.Error("expected error when no route exists")
	}
}

func TestPlaces_Search(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "cafe" {
			t.Errorf("unexpected type %q", r.URL.Query().Get("type"))
		}
		if r.URL.Query().Get("radius") != "2000" {
			t.Errorf("unexpected radius %q", r.URL.Query().Get("radius"))
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [
				{
					"name": "Cafe Alpha",
					"vicinity": "1 Main St",
					"geometry": {"location": {"lat": 43.684, "lng": -79.419}},
					"rating": 4.5,
					"user_ratings_total": 300,
					"price_level": 2,
					"place_id": "alpha-id",
					"types": ["cafe", "food"],
					"opening_hours": {"open_now": true}
				},
				{
					"name": "Cafe Beta",
					"geometry": {"location": {"lat": 43.685, "lng": -79.42}}
				},
				{
					"name": "Cafe Gamma",
					"geometry": {"location": {"lat": 43.686, "lng": -79.421}}
				}
			]
		}`)
	})

	venues, err := googlemaps.NewPlaces(client).Search(
		context.Background(),
		domain.GeoPoint{Lat: 43.684, Lng: -79.419},
		"cafe", 2000, 2,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("expected results truncated to 2, got %d", len(venues))
	}

	alpha := venues[0]
	if alpha.Name != "Cafe Alpha" || alpha.Address != "1 Main St" {
		t.Errorf("unexpected venue %+v", alpha)
	}
	if alpha.Rating == nil || *alpha.Rating != 4.5 {
		t.Errorf("unexpected rating %v", alpha.Rating)
	}
	if alpha.OpenNow == nil || !*alpha.OpenNow {
		t.Error("expected Alpha to be open")
	}

	// Fields absent from the response stay unknown, not zero.
	beta := venues[1]
	if beta.Rating != nil || beta.OpenNow != nil || beta.PriceLevel != nil {
		t.Errorf("expected unknown fields to stay nil: %+v", beta)
	}
}

func TestPlaces_Search_UnknownCategory(t *testing.T) {
	client := mapsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "cafe" {
			t.Errorf("unknown category should fall back to cafe, got %q", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	})

	venues, err := googlemaps.NewPlaces(client).Search(
		context.Background(),
		domain.GeoPoint{Lat: 43.684, Lng: -79.419},
		"casino", 2000, 10,
	)
	if err != nil {
		t.Fatalf("ZERO_RESULTS is not an error: %v", err)
	}
	if len(venues) != 0 {
		t.Errorf("expected no venues, got %d", len(venues))
	}
}
