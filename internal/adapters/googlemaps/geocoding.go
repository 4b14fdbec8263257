package googlemaps

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// Geocoder implements ports.GeocodeService via the Geocoding API.
type Geocoder struct {
	client *Client
}

// NewGeocoder creates a new Geocoder.
func NewGeocoder(client *Client) *Geocoder {
	return &Geocoder{client: client}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-text address to a coordinate.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*domain.GeocodedLocation, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := g.client.getJSON(ctx, "/maps/api/geocode/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" {
		return nil, fmt.Errorf("geocoding failed: %s", resp.Status)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("geocoding returned no results for %q", address)
	}

	first := resp.Results[0]
	return &domain.GeocodedLocation{
		Point: domain.GeoPoint{
			Lat: first.Geometry.Location.Lat,
			Lng: first.Geometry.Location.Lng,
		},
		FormattedAddress: first.FormattedAddress,
	}, nil
}
