package usecases_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/usecases"
)

// --- Mock PreferenceRepository ---

type mockPrefRepo struct {
	upsertFn     func(ctx context.Context, pref *domain.Preference) error
	getFn        func(ctx context.Context, userID, key string) (*domain.Preference, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.Preference, error)
}

func (m *mockPrefRepo) Upsert(ctx context.Context, pref *domain.Preference) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, pref)
	}
	return nil
}

func (m *mockPrefRepo) Get(ctx context.Context, userID, key string) (*domain.Preference, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, key)
	}
	return nil, nil
}

func (m *mockPrefRepo) ListByUser(ctx context.Context, userID string) ([]domain.Preference, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

// --- Tests ---

func TestPreferenceService_Set(t *testing.T) {
	var stored *domain.Preference
	repo := &mockPrefRepo{
		upsertFn: func(ctx context.Context, pref *domain.Preference) error {
			stored = pref
			return nil
		},
	}
	svc := usecases.NewPreferenceService(repo, &mockHistoryRepo{})

	if err := svc.Set(context.Background(), "user-1", "favorite_place_type", "park"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("preference was not stored")
	}
	if stored.UserID != "user-1" || stored.Key != "favorite_place_type" || stored.Value != "park" {
		t.Errorf("unexpected stored preference %+v", stored)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestPreferenceService_Set_RequiresUserAndKey(t *testing.T) {
	svc := usecases.NewPreferenceService(&mockPrefRepo{}, &mockHistoryRepo{})

	if err := svc.Set(context.Background(), "", "key", "v"); err == nil {
		t.Error("expected error for missing user id")
	}
	if err := svc.Set(context.Background(), "user-1", "", "v"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestPreferenceService_History_ClampsLimit(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{0, 10},
		{-3, 10},
		{50, 10},
		{5, 5},
	}

	for _, tc := range cases {
		var gotLimit int
		history := &mockHistoryRepo{
			listByUserFn: func(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
				gotLimit = limit
				return nil, nil
			},
		}
		svc := usecases.NewPreferenceService(&mockPrefRepo{}, history)

		if _, err := svc.History(context.Background(), "user-1", tc.requested); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotLimit != tc.want {
			t.Errorf("History(limit=%d) passed %d to the repo, want %d", tc.requested, gotLimit, tc.want)
		}
	}
}

func TestPreferenceService_Summary(t *testing.T) {
	repo := &mockPrefRepo{
		listByUserFn: func(ctx context.Context, userID string) ([]domain.Preference, error) {
			return []domain.Preference{{UserID: userID, Key: "favorite_place_type", Value: "cafe"}}, nil
		},
	}
	history := &mockHistoryRepo{
		countByUserFn: func(ctx context.Context, userID string) (int, error) {
			return 12, nil
		},
		frequentLocationsFn: func(ctx context.Context, userID string, limit int) (map[string]int, error) {
			if limit != 3 {
				t.Errorf("expected top-3 frequent locations, got limit %d", limit)
			}
			return map[string]int{"CN Tower, Toronto": 7, "Yorkdale Mall": 4}, nil
		},
	}
	svc := usecases.NewPreferenceService(repo, history)

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSearches != 12 {
		t.Errorf("expected 12 searches, got %d", summary.TotalSearches)
	}
	if len(summary.Preferences) != 1 {
		t.Errorf("expected 1 preference, got %d", len(summary.Preferences))
	}
	if summary.FrequentLocations["CN Tower, Toronto"] != 7 {
		t.Errorf("unexpected frequent locations %+v", summary.FrequentLocations)
	}
}

func TestPreferenceService_Summary_CountError(t *testing.T) {
	history := &mockHistoryRepo{
		countByUserFn: func(ctx context.Context, userID string) (int, error) {
			return 0, fmt.Errorf("connection refused")
		},
	}
	svc := usecases.NewPreferenceService(&mockPrefRepo{}, history)

	if _, err := svc.Summary(context.Background(), "user-1"); err == nil {
		t.Error("expected error when history count fails")
	}
}
