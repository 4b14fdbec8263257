package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
)

// TravelService answers travel-time questions against the routing oracle,
// with read-through caching of measurements.
type TravelService struct {
	oracle ports.TravelTimeOracle
	cache  ports.CacheService
}

// NewTravelService creates a new TravelService.
func NewTravelService(oracle ports.TravelTimeOracle, cache ports.CacheService) *TravelService {
	return &TravelService{oracle: oracle, cache: cache}
}

// Measure returns the travel measurement for one origin→destination pair.
func (s *TravelService) Measure(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.TravelMeasurement, error) {
	if err := validatePair(origin, destination); err != nil {
		return nil, err
	}
	if s.oracle == nil {
		return nil, fmt.Errorf("travel-time oracle not configured")
	}

	cacheKey := fmt.Sprintf("travel:%.5f,%.5f:%.5f,%.5f:%s",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng, mode)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var m domain.TravelMeasurement
			if err := json.Unmarshal(data, &m); err == nil {
				return &m, nil
			}
		}
	}

	m, err := s.oracle.Measure(ctx, origin, destination, mode)
	if err != nil {
		return nil, err
	}

	// Travel times drift slowly; 10 minutes keeps repeat searches cheap.
	if s.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return m, nil
}

// Compare measures both people's travel to one destination and derives the
// duration fairness ratio and the time gap.
func (s *TravelService) Compare(ctx context.Context, origin1, origin2, destination domain.GeoPoint, mode1, mode2 domain.TravelMode) (*domain.TravelComparison, error) {
	m1, err := s.Measure(ctx, origin1, destination, mode1)
	if err != nil {
		return nil, fmt.Errorf("person 1 travel time: %w", err)
	}
	m2, err := s.Measure(ctx, origin2, destination, mode2)
	if err != nil {
		return nil, fmt.Errorf("person 2 travel time: %w", err)
	}

	gap := m1.DurationSeconds - m2.DurationSeconds
	if gap < 0 {
		gap = -gap
	}

	return &domain.TravelComparison{
		Person1:           *m1,
		Person2:           *m2,
		FairnessRatio:     domain.FairnessRatio(m1.DurationSeconds, m2.DurationSeconds),
		TimeDifferenceSec: gap,
		TimeDifferenceMin: gap / 60,
	}, nil
}
