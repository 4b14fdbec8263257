package postgres

import (
	"context"

	"github.com/samirrijal/middleground/internal/core/domain"
)

// HistoryRepo implements ports.SearchHistoryRepository with pgx.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Insert records one completed search.
func (r *HistoryRepo) Insert(ctx context.Context, rec *domain.SearchRecord) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO search_history
			(user_id, location_1, location_2, mode1, mode2, place_type,
			 midpoint, top_venue)
		VALUES ($1, $2, $3, $4, $5, $6,
		        ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography, $9)
		RETURNING id, created_at
	`, rec.UserID, rec.Location1, rec.Location2, rec.Mode1, rec.Mode2,
		rec.PlaceType, rec.Midpoint.Lng, rec.Midpoint.Lat, rec.TopVenue,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// ListByUser returns the most recent searches, newest first.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, location_1, location_2, mode1, mode2, place_type,
		       ST_Y(midpoint::geometry) as lat,
		       ST_X(midpoint::geometry) as lng,
		       COALESCE(top_venue, ''), created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SearchRecord
	for rows.Next() {
		var rec domain.SearchRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Location1, &rec.Location2,
			&rec.Mode1, &rec.Mode2, &rec.PlaceType,
			&rec.Midpoint.Lat, &rec.Midpoint.Lng,
			&rec.TopVenue, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByUser returns the total number of searches a user has run.
func (r *HistoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM search_history WHERE user_id = $1
	`, userID).Scan(&count)
	return count, err
}

// FrequentLocations returns the user's most searched origin addresses with
// their counts. Both origin columns contribute.
func (r *HistoryRepo) FrequentLocations(ctx context.Context, userID string, limit int) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT location, COUNT(*) as uses FROM (
			SELECT location_1 as location FROM search_history WHERE user_id = $1
			UNION ALL
			SELECT location_2 FROM search_history WHERE user_id = $1
		) origins
		GROUP BY location
		ORDER BY uses DESC, location
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	freq := make(map[string]int)
	for rows.Next() {
		var loc string
		var uses int
		if err := rows.Scan(&loc, &uses); err != nil {
			return nil, err
		}
		freq[loc] = uses
	}
	return freq, rows.Err()
}
