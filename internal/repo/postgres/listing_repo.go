package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepo struct {
	pool *pgxpool.Pool
}

type ListingRecord struct {
	ID           string
	OwnerUserID  int64
	Kind         string
	Title        string
	City         string
	Rent         int
	Description  string
	Status       string
	ContactName  string
	ContactPhone string
	ContactEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListingFilter struct {
	Kind    string
	City    string
	RentMin int
	RentMax int
	Status  string
	Limit   int
	Offset  int
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

func (r *ListingRepo) Create(ctx context.Context, rec ListingRecord) (ListingRecord, error) {
	if r.pool == nil {
		return ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if rec.OwnerUserID <= 0 || strings.TrimSpace(rec.Title) == "" {
		return ListingRecord{}, fmt.Errorf("invalid listing create payload")
	}

	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO listings (
	id,
	owner_user_id,
	kind,
	title,
	city,
	rent,
	description,
	status,
	contact_name,
	contact_phone,
	contact_email,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
RETURNING created_at, updated_at
`,
		rec.ID,
		rec.OwnerUserID,
		rec.Kind,
		rec.Title,
		rec.City,
		rec.Rent,
		rec.Description,
		rec.Status,
		rec.ContactName,
		rec.ContactPhone,
		rec.ContactEmail,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return ListingRecord{}, fmt.Errorf("insert listing: %w", err)
	}

	return rec, nil
}

func (r *ListingRepo) FindByID(ctx context.Context, listingID string) (ListingRecord, error) {
	if r.pool == nil {
		return ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(listingID) == "" {
		return ListingRecord{}, fmt.Errorf("listing id is required")
	}

	rec := ListingRecord{}
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_user_id, kind, title, city, rent, description, status,
	contact_name, contact_phone, contact_email, created_at, updated_at
FROM listings
WHERE id = $1
LIMIT 1
`, listingID).Scan(
		&rec.ID,
		&rec.OwnerUserID,
		&rec.Kind,
		&rec.Title,
		&rec.City,
		&rec.Rent,
		&rec.Description,
		&rec.Status,
		&rec.ContactName,
		&rec.ContactPhone,
		&rec.ContactEmail,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ListingRecord{}, ErrListingNotFound
		}
		return ListingRecord{}, fmt.Errorf("load listing: %w", err)
	}

	return rec, nil
}

// List returns catalog items in display order, newest first. Catalog order
// here is the order every materialized view (browse, saved) preserves.
func (r *ListingRepo) List(ctx context.Context, filter ListingFilter) ([]ListingRecord, error) {
	if r.pool == nil {
		return nil, nil
	}

	query := strings.Builder{}
	query.WriteString(`
SELECT id, owner_user_id, kind, title, city, rent, description, status,
	contact_name, contact_phone, contact_email, created_at, updated_at
FROM listings
WHERE 1=1
`)
	args := []any{}

	if strings.TrimSpace(filter.Status) != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&query, " AND status = $%d", len(args))
	}
	if strings.TrimSpace(filter.Kind) != "" {
		args = append(args, filter.Kind)
		fmt.Fprintf(&query, " AND kind = $%d", len(args))
	}
	if strings.TrimSpace(filter.City) != "" {
		args = append(args, filter.City)
		fmt.Fprintf(&query, " AND city = $%d", len(args))
	}
	if filter.RentMin > 0 {
		args = append(args, filter.RentMin)
		fmt.Fprintf(&query, " AND rent >= $%d", len(args))
	}
	if filter.RentMax > 0 {
		args = append(args, filter.RentMax)
		fmt.Fprintf(&query, " AND rent <= $%d", len(args))
	}

	query.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var records []ListingRecord
	for rows.Next() {
		rec := ListingRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerUserID,
			&rec.Kind,
			&rec.Title,
			&rec.City,
			&rec.Rent,
			&rec.Description,
			&rec.Status,
			&rec.ContactName,
			&rec.ContactPhone,
			&rec.ContactEmail,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return records, nil
}

// ListByIDs materializes the given set against the catalog, preserving
// catalog display order rather than any order of the input ids.
func (r *ListingRepo) ListByIDs(ctx context.Context, ids []string, status string) ([]ListingRecord, error) {
	if r.pool == nil || len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, owner_user_id, kind, title, city, rent, description, status,
	contact_name, contact_phone, contact_email, created_at, updated_at
FROM listings
WHERE id = ANY($1) AND status = $2
ORDER BY created_at DESC, id DESC
`, ids, status)
	if err != nil {
		return nil, fmt.Errorf("list listings by ids: %w", err)
	}
	defer rows.Close()

	var records []ListingRecord
	for rows.Next() {
		rec := ListingRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerUserID,
			&rec.Kind,
			&rec.Title,
			&rec.City,
			&rec.Rent,
			&rec.Description,
			&rec.Status,
			&rec.ContactName,
			&rec.ContactPhone,
			&rec.ContactEmail,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return records, nil
}

func (r *ListingRepo) UpdateStatus(ctx context.Context, listingID, status string) (ListingRecord, error) {
	if r.pool == nil {
		return ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(listingID) == "" || strings.TrimSpace(status) == "" {
		return ListingRecord{}, fmt.Errorf("invalid status update payload")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE listings
SET status = $2, updated_at = NOW()
WHERE id = $1
`, listingID, status)
	if err != nil {
		return ListingRecord{}, fmt.Errorf("update listing status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ListingRecord{}, ErrListingNotFound
	}

	return r.FindByID(ctx, listingID)
}
