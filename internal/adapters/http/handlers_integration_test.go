//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samirrijal/middleground/internal/adapters/http"
	"github.com/samirrijal/middleground/internal/adapters/postgres"
	"github.com/samirrijal/middleground/internal/core/domain"
	"github.com/samirrijal/middleground/internal/core/usecases"
	"github.com/samirrijal/middleground/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("middleground-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupDBDeps creates dependencies with real repos, no external services.
func setupDBDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	prefRepo := postgres.NewPreferenceRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)

	return &http.Dependencies{
		Midpoints:   usecases.NewMidpointService(nil),
		Preferences: usecases.NewPreferenceService(prefRepo, historyRepo),
		DB:          db,
	}
}

// seedSearch inserts one search record for a user.
func seedSearch(t *testing.T, db *postgres.DB, userID, loc1, loc2 string) {
	rec := &domain.SearchRecord{
		UserID:    userID,
		Location1: loc1,
		Location2: loc2,
		Mode1:     domain.ModeWalking,
		Mode2:     domain.ModeDriving,
		PlaceType: "cafe",
		Midpoint:  domain.GeoPoint{Lat: 43.68, Lng: -79.41},
		TopVenue:  "Cafe Iruna",
	}
	if err := postgres.NewHistoryRepo(db).Insert(context.Background(), rec); err != nil {
		t.Fatalf("seed search: %v", err)
	}
}

// TestHistory_Integration round-trips a search record through Postgres.
func TestHistory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	userID := "it_" + time.Now().Format("20060102150405")
	seedSearch(t, db, userID, "CN Tower", "Yorkdale Mall")
	seedSearch(t, db, userID, "CN Tower", "Union Station")

	deps := setupDBDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/users/"+userID+"/history", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.SearchRecord `json:"data"`
		Pagination struct{ Total int }   `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected 2 searches, got %d", result.Pagination.Total)
	}
}

// TestPreferences_Integration stores and reads back one preference.
func TestPreferences_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupDBDeps(t, db)
	app := setupApp(deps)

	userID := "it_pref_" + time.Now().Format("20060102150405")

	put := httptest.NewRequest("PUT", "/v1/users/"+userID+"/preferences/place_type",
		strings.NewReader(`{"value":"park"}`))
	put.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(put, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	get := httptest.NewRequest("GET", "/v1/users/"+userID+"/preferences/place_type", nil)
	resp, err = app.Test(get, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var pref domain.Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if pref.Value != "park" {
		t.Errorf("expected park, got %s", pref.Value)
	}
}

// TestFrequentLocations_Integration verifies the aggregate over both origin columns.
func TestFrequentLocations_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	userID := "it_freq_" + time.Now().Format("20060102150405")
	seedSearch(t, db, userID, "CN Tower", "Yorkdale Mall")
	seedSearch(t, db, userID, "CN Tower", "Union Station")
	seedSearch(t, db, userID, "High Park", "CN Tower")

	freq, err := postgres.NewHistoryRepo(db).FrequentLocations(context.Background(), userID, 3)
	if err != nil {
		t.Fatalf("frequent locations: %v", err)
	}
	if freq["CN Tower"] != 3 {
		t.Errorf("expected CN Tower used 3 times, got %d", freq["CN Tower"])
	}
}
