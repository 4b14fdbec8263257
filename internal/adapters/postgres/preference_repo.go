package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/middleground/internal/core/domain"
)

// PreferenceRepo implements ports.PreferenceRepository with pgx.
type PreferenceRepo struct {
	db *DB
}

// NewPreferenceRepo creates a new PreferenceRepo.
func NewPreferenceRepo(db *DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// Upsert inserts or updates one preference keyed by (user_id, key).
func (r *PreferenceRepo) Upsert(ctx context.Context, pref *domain.Preference) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, pref.UserID, pref.Key, pref.Value)
	return err
}

// Get returns one preference, or nil when the user has none for the key.
func (r *PreferenceRepo) Get(ctx context.Context, userID, key string) (*domain.Preference, error) {
	var p domain.Preference
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, key, value, updated_at
		FROM preferences WHERE user_id = $1 AND key = $2
	`, userID, key).Scan(&p.UserID, &p.Key, &p.Value, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns all preferences for a user ordered by key.
func (r *PreferenceRepo) ListByUser(ctx context.Context, userID string) ([]domain.Preference, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_id, key, value, updated_at
		FROM preferences WHERE user_id = $1
		ORDER BY key
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []domain.Preference
	for rows.Next() {
		var p domain.Preference
		if err := rows.Scan(&p.UserID, &p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
