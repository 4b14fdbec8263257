package googlemaps

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/pkg/metrics"
)

// DistanceMatrix implements ports.TravelTimeOracle via the Distance Matrix API.
type DistanceMatrix struct {
	client *Client
}

// NewDistanceMatrix creates a new DistanceMatrix oracle.
func NewDistanceMatrix(client *Client) *DistanceMatrix {
	return &DistanceMatrix{client: client}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value float64 `json:"value"`
				Text  string  `json:"text"`
			} `json:"duration"`
			Distance struct {
				Value float64 `json:"value"`
				Text  string  `json:"text"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Measure returns the travel time and distance for one origin→destination
// pair at one mode.
func (d *DistanceMatrix) Measure(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.TravelMeasurement, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("mode", string(mode))

	start := time.Now()
	var resp distanceMatrixResponse
	err := d.client.getJSON(ctx, "/maps/api/distancematrix/json", params, &resp)
	metrics.OracleCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OracleCalls.WithLabelValues(string(mode), "error").Inc()
		return nil, err
	}

	if resp.Status != "OK" {
		metrics.OracleCalls.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("distance matrix failed: %s", resp.Status)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		metrics.OracleCalls.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("distance matrix returned no elements")
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		metrics.OracleCalls.WithLabelValues(string(mode), "no_route").Inc()
		return nil, fmt.Errorf("route not found: %s", element.Status)
	}

	metrics.OracleCalls.WithLabelValues(string(mode), "ok").Inc()
	return &domain.TravelMeasurement{
		DurationSeconds: element.Duration.Value,
		DurationText:    element.Duration.Text,
		DistanceMeters:  element.Distance.Value,
		DistanceText:    element.Distance.Text,
		Mode:            mode,
	}, nil
}
