package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPhotoLimitReached = errors.New("photo limit reached")

const maxListingPhotos = 6

type PhotoRepo struct {
	pool *pgxpool.Pool
}

type PhotoRecord struct {
	ID        int64
	ListingID string
	Position  int
	ObjectKey string
	CreatedAt time.Time
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func (r *PhotoRepo) CreatePhoto(ctx context.Context, listingID, objectKey string) (PhotoRecord, error) {
	if strings.TrimSpace(listingID) == "" || strings.TrimSpace(objectKey) == "" {
		return PhotoRecord{}, fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record PhotoRecord
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(txCtx, `
SELECT COUNT(*)
FROM listing_photos
WHERE listing_id = $1
`, listingID).Scan(&count); err != nil {
			return fmt.Errorf("count listing photos: %w", err)
		}
		if count >= maxListingPhotos {
			return ErrPhotoLimitReached
		}

		return tx.QueryRow(txCtx, `
INSERT INTO listing_photos (listing_id, position, object_key, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING id, listing_id, position, object_key, created_at
`, listingID, count+1, objectKey).Scan(
			&record.ID,
			&record.ListingID,
			&record.Position,
			&record.ObjectKey,
			&record.CreatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, ErrPhotoLimitReached) {
			return PhotoRecord{}, ErrPhotoLimitReached
		}
		return PhotoRecord{}, fmt.Errorf("create listing photo: %w", err)
	}

	return record, nil
}

func (r *PhotoRepo) ListByListing(ctx context.Context, listingID string) ([]PhotoRecord, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, fmt.Errorf("invalid listing id")
	}
	if r.pool == nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, listing_id, position, object_key, created_at
FROM listing_photos
WHERE listing_id = $1
ORDER BY position ASC
`, listingID)
	if err != nil {
		return nil, fmt.Errorf("list listing photos: %w", err)
	}
	defer rows.Close()

	var records []PhotoRecord
	for rows.Next() {
		var rec PhotoRecord
		if err := rows.Scan(&rec.ID, &rec.ListingID, &rec.Position, &rec.ObjectKey, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan listing photo: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing photos: %w", err)
	}

	return records, nil
}

func MaxListingPhotos() int {
	return maxListingPhotos
}
