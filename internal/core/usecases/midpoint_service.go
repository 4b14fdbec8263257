package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
	"github.com/samirrijal/middleground/internal/pkg/geospatial"
)

// Refinement constants for the time-fair search. The step moves the candidate
// a quarter of the way toward the slower person's origin; at most four
// refinements keeps the oracle cost bounded (≤ 10 calls per midpoint).
const (
	timeFairTolerance  = 0.90
	timeFairStep       = 0.25
	timeFairIterations = 4
)

// MidpointService computes candidate meeting coordinates from two endpoints.
// The oracle is optional; without it TimeFair degrades to Weighted.
type MidpointService struct {
	oracle ports.TravelTimeOracle
}

// NewMidpointService creates a new MidpointService.
func NewMidpointService(oracle ports.TravelTimeOracle) *MidpointService {
	return &MidpointService{oracle: oracle}
}

// Simple returns the arithmetic-mean midpoint. Valid for nearby points; it
// does not correct for projection distortion at continental scale.
func (s *MidpointService) Simple(a, b domain.GeoPoint) (*domain.MidpointResult, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}
	return &domain.MidpointResult{
		Point: domain.GeoPoint{
			Lat: (a.Lat + b.Lat) / 2,
			Lng: (a.Lng + b.Lng) / 2,
		},
		Method: domain.MethodSimpleGeographic,
	}, nil
}

// Weighted returns the travel-mode-weighted midpoint. The slower mode carries
// the larger weight, pulling the meeting point toward that person. The result
// reports the displacement in km from the simple midpoint.
func (s *MidpointService) Weighted(a, b domain.GeoPoint, mode1, mode2 domain.TravelMode) (*domain.MidpointResult, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}

	w1, w2 := mode1.Weight(), mode2.Weight()
	total := w1 + w2

	point := domain.GeoPoint{
		Lat: (a.Lat*w1 + b.Lat*w2) / total,
		Lng: (a.Lng*w1 + b.Lng*w2) / total,
	}

	simple, _ := s.Simple(a, b)
	adjustment := geospatial.DistanceKm(simple.Point.Lat, simple.Point.Lng, point.Lat, point.Lng)

	return &domain.MidpointResult{
		Point:        point,
		Method:       domain.MethodWeightedByMode,
		Mode1:        mode1,
		Mode2:        mode2,
		Weight1:      w1,
		Weight2:      w2,
		AdjustmentKm: adjustment,
	}, nil
}

// TimeFair searches for a coordinate that equalizes travel time rather than
// distance. It starts from the weighted midpoint, measures both people's
// travel via the oracle, and while the duration fairness ratio stays below
// tolerance nudges the candidate toward the slower person's origin. Any
// oracle failure degrades to the weighted result; this method never fails
// because of the oracle.
func (s *MidpointService) TimeFair(ctx context.Context, a, b domain.GeoPoint, mode1, mode2 domain.TravelMode) (*domain.MidpointResult, error) {
	weighted, err := s.Weighted(a, b, mode1, mode2)
	if err != nil {
		return nil, err
	}
	if s.oracle == nil {
		return weighted, nil
	}

	candidate := weighted.Point
	var last1, last2 *domain.TravelMeasurement
	iterations := 0

	for i := 0; i <= timeFairIterations; i++ {
		m1, err1 := s.oracle.Measure(ctx, a, candidate, mode1)
		if err1 != nil {
			slog.Warn("time-fair midpoint: oracle failed, using weighted result", "person", 1, "error", err1)
			return weighted, nil
		}
		m2, err2 := s.oracle.Measure(ctx, b, candidate, mode2)
		if err2 != nil {
			slog.Warn("time-fair midpoint: oracle failed, using weighted result", "person", 2, "error", err2)
			return weighted, nil
		}

		last1, last2 = m1, m2
		if domain.FairnessRatio(m1.DurationSeconds, m2.DurationSeconds) >= timeFairTolerance || i == timeFairIterations {
			break
		}

		// Pull the candidate toward whoever is traveling longer.
		slower := a
		if m2.DurationSeconds > m1.DurationSeconds {
			slower = b
		}
		candidate = domain.GeoPoint{
			Lat: candidate.Lat + timeFairStep*(slower.Lat-candidate.Lat),
			Lng: candidate.Lng + timeFairStep*(slower.Lng-candidate.Lng),
		}
		iterations++
	}

	gap := last1.DurationSeconds - last2.DurationSeconds
	if gap < 0 {
		gap = -gap
	}

	return &domain.MidpointResult{
		Point:             candidate,
		Method:            domain.MethodTimeFair,
		Mode1:             mode1,
		Mode2:             mode2,
		Weight1:           mode1.Weight(),
		Weight2:           mode2.Weight(),
		TravelTime1:       last1.DurationText,
		TravelTime2:       last2.DurationText,
		TimeDifferenceMin: gap / 60,
		FairnessRatio:     domain.FairnessRatio(last1.DurationSeconds, last2.DurationSeconds),
		Iterations:        iterations,
	}, nil
}

// DistanceReport returns each person's great-circle distance to a midpoint
// and the distance fairness ratio, independent of which strategy produced it.
func (s *MidpointService) DistanceReport(a, b, mid domain.GeoPoint) (*domain.MidpointDistances, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}
	if err := mid.Validate(); err != nil {
		return nil, fmt.Errorf("midpoint: %w", err)
	}

	d1 := geospatial.DistanceKm(a.Lat, a.Lng, mid.Lat, mid.Lng)
	d2 := geospatial.DistanceKm(b.Lat, b.Lng, mid.Lat, mid.Lng)

	return &domain.MidpointDistances{
		Distance1Km:   d1,
		Distance2Km:   d2,
		FairnessRatio: domain.FairnessRatio(d1, d2),
	}, nil
}

func validatePair(a, b domain.GeoPoint) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("coordinate 1: %w", err)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("coordinate 2: %w", err)
	}
	return nil
}
