package googlemaps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// placeTypes are the nearby-search categories we expose. Anything else
// searches cafes.
var placeTypes = map[string]bool{
	"cafe": true, "restaurant": true, "park": true, "bar": true,
	"library": true, "mall": true, "beach": true,
}

// Places implements ports.VenueSearchService via the Places Nearby Search API.
type Places struct {
	client *Client
}

// NewPlaces creates a new Places search adapter.
func NewPlaces(client *Client) *Places {
	return &Places{client: client}
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		PriceLevel       *int     `json:"price_level"`
		PlaceID          string   `json:"place_id"`
		Types            []string `json:"types"`
		OpeningHours     *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"opening_hours"`
	} `json:"results"`
}

// Search finds venues of the given category around a center point.
func (p *Places) Search(ctx context.Context, center domain.GeoPoint, category string, radiusMeters, maxResults int) ([]domain.Venue, error) {
	if !placeTypes[category] {
		category = "cafe"
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("type", category)

	var resp placesResponse
	if err := p.client.getJSON(ctx, "/maps/api/place/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places search failed: %s", resp.Status)
	}

	venues := make([]domain.Venue, 0, maxResults)
	for _, r := range resp.Results {
		if len(venues) == maxResults {
			break
		}
		v := domain.Venue{
			Name:        r.Name,
			Address:     r.Vicinity,
			Location:    domain.GeoPoint{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:      r.Rating,
			ReviewCount: r.UserRatingsTotal,
			PriceLevel:  r.PriceLevel,
			PlaceID:     r.PlaceID,
			Categories:  r.Types,
		}
		if r.OpeningHours != nil {
			v.OpenNow = r.OpeningHours.OpenNow
		}
		venues = append(venues, v)
	}

	return venues, nil
}
