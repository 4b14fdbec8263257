package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/ports"
)

// PreferenceService manages the long-term memory bank: learned preferences,
// search history, and frequent locations per user.
type PreferenceService struct {
	prefs   ports.PreferenceRepository
	history ports.SearchHistoryRepository
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(prefs ports.PreferenceRepository, history ports.SearchHistoryRepository) *PreferenceService {
	return &PreferenceService{prefs: prefs, history: history}
}

// Set stores one preference for a user.
func (s *PreferenceService) Set(ctx context.Context, userID, key, value string) error {
	if userID == "" || key == "" {
		return fmt.Errorf("user id and preference key are required")
	}
	return s.prefs.Upsert(ctx, &domain.Preference{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	})
}

// Get returns one preference, or nil when the user has not set it.
func (s *PreferenceService) Get(ctx context.Context, userID, key string) (*domain.Preference, error) {
	return s.prefs.Get(ctx, userID, key)
}

// List returns all of a user's preferences.
func (s *PreferenceService) List(ctx context.Context, userID string) ([]domain.Preference, error) {
	return s.prefs.ListByUser(ctx, userID)
}

// History returns a user's most recent searches, newest first. The window is
// capped at the last ten searches.
func (s *PreferenceService) History(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	return s.history.ListByUser(ctx, userID, limit)
}

// MemorySummary is what the system has learned about a user.
type MemorySummary struct {
	TotalSearches     int                 `json:"total_searches"`
	Preferences       []domain.Preference `json:"preferences"`
	FrequentLocations map[string]int      `json:"frequent_locations"`
}

// Summary aggregates a user's memory bank into one view.
func (s *PreferenceService) Summary(ctx context.Context, userID string) (*MemorySummary, error) {
	total, err := s.history.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count searches: %w", err)
	}

	prefs, err := s.prefs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	locations, err := s.history.FrequentLocations(ctx, userID, 3)
	if err != nil {
		return nil, fmt.Errorf("frequent locations: %w", err)
	}

	return &MemorySummary{
		TotalSearches:     total,
		Preferences:       prefs,
		FrequentLocations: locations,
	}, nil
}
