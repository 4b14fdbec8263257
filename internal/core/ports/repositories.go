package ports

import (
	"context"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// PreferenceRepository persists learned user preferences (the long-term
// "memory bank").
type PreferenceRepository interface {
	Upsert(ctx context.Context, pref *domain.Preference) error
	Get(ctx context.Context, userID, key string) (*domain.Preference, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Preference, error)
}

// SearchHistoryRepository persists completed searches.
type SearchHistoryRepository interface {
	Insert(ctx context.Context, record *domain.SearchRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	FrequentLocations(ctx context.Context, userID string, limit int) (map[string]int, error)
}
