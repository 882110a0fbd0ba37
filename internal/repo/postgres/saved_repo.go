package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SavedRepo struct {
	pool *pgxpool.Pool
}

type SavedListingRecord struct {
	ListingID string
	SavedAt   time.Time
}

func NewSavedRepo(pool *pgxpool.Pool) *SavedRepo {
	return &SavedRepo{pool: pool}
}

// Toggle flips set membership for the listing: absent inserts, present
// deletes. Returns whether the listing is saved after the call.
func (r *SavedRepo) Toggle(ctx context.Context, userID int64, listingID string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(listingID) == "" {
		return false, fmt.Errorf("invalid saved toggle payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	inserted, err := r.pool.Exec(ctx, `
INSERT INTO saved_listings (user_id, listing_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, listing_id) DO NOTHING
`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("save listing: %w", err)
	}
	if inserted.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM saved_listings
WHERE user_id = $1 AND listing_id = $2
`, userID, listingID); err != nil {
		return false, fmt.Errorf("unsave listing: %w", err)
	}

	return false, nil
}

func (r *SavedRepo) ListIDs(ctx context.Context, userID int64) ([]string, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT listing_id
FROM saved_listings
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved ids: %w", err)
	}

	return ids, nil
}

func (r *SavedRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM saved_listings WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("delete saved listings: %w", err)
	}

	return nil
}
