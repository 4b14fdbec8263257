package ports

import (
	"context"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// GeocodeService resolves free-text addresses into coordinates.
type GeocodeService interface {
	Geocode(ctx context.Context, address string) (*domain.GeocodedLocation, error)
}

// TravelTimeOracle measures point-to-point travel time and distance for a
// given mode. Implementations wrap an external routing / distance-matrix
// service; a failed call returns an error and the caller decides how to
// degrade.
type TravelTimeOracle interface {
	Measure(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.TravelMeasurement, error)
}

// VenueSearchService finds candidate venues around a center point.
type VenueSearchService interface {
	Search(ctx context.Context, center domain.GeoPoint, category string, radiusMeters, maxResults int) ([]domain.Venue, error)
}

// RankingDelegate is the external multi-criteria reasoning service. It is
// untrusted: its output is validated by the ranking engine, and any failure
// triggers deterministic fallback scoring.
type RankingDelegate interface {
	Rank(ctx context.Context, summaries []domain.VenueSummary, preferences map[string]string) (*domain.RankOrder, error)
}

// InterpretationService turns a free-text place request into a structured
// preference. Implementations may be AI-backed; failures must be recoverable
// with a deterministic fallback at the call site.
type InterpretationService interface {
	InterpretPreference(ctx context.Context, text string) (*domain.PlacePreference, error)
}

// EventPublisher publishes search lifecycle events to a message broker.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, record *domain.SearchRecord) error
	PublishRankFallback(ctx context.Context, reason string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
