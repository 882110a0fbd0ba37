package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrProviderTxConflict = errors.New("provider tx already attached to another purchase")
)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

type PurchaseRecord struct {
	ID           string
	UserID       int64
	SKU          string
	PlanName     string
	Amount       int
	Provider     string
	ExternalTxID *string
	Status       string
	Payload      map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

func (r *PurchaseRepo) CreatePending(ctx context.Context, userID int64, sku, planName string, amount int, provider string, payload map[string]any) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(sku) == "" || strings.TrimSpace(provider) == "" || amount < 0 {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase create payload")
	}

	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return PurchaseRecord{}, err
	}

	record := PurchaseRecord{}
	var rawPayload []byte
	err = r.pool.QueryRow(ctx, `
INSERT INTO purchases (
	id,
	user_id,
	sku,
	plan_name,
	amount,
	provider,
	status,
	payload,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, NOW(), NOW())
RETURNING id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
`, uuid.NewString(), userID, sku, planName, amount, provider, payloadJSON).Scan(
		&record.ID,
		&record.UserID,
		&record.SKU,
		&record.PlanName,
		&record.Amount,
		&record.Provider,
		&record.ExternalTxID,
		&record.Status,
		&rawPayload,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("insert pending purchase: %w", err)
	}

	record.Payload = unmarshalPayload(rawPayload)
	return record, nil
}

func (r *PurchaseRepo) FindByID(ctx context.Context, purchaseID string) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(purchaseID) == "" {
		return PurchaseRecord{}, fmt.Errorf("purchase id is required")
	}

	return r.scanOne(ctx, r.pool, `
SELECT id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
FROM purchases
WHERE id = $1
LIMIT 1
`, purchaseID)
}

func (r *PurchaseRepo) FindByProviderTx(ctx context.Context, provider, providerTxID string) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(provider) == "" || strings.TrimSpace(providerTxID) == "" {
		return PurchaseRecord{}, fmt.Errorf("invalid provider tx lookup payload")
	}

	return r.scanOne(ctx, r.pool, `
SELECT id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
FROM purchases
WHERE provider = $1 AND external_tx_id = $2
LIMIT 1
`, provider, providerTxID)
}

// ConfirmAndGrant transitions a pending purchase to confirmed, attaching the
// provider tx id, and applies the plan to the user's entitlement ledger — all
// in one transaction. A grant failure rolls the confirmation back, so a
// webhook retry finds the purchase still pending and re-attempts both.
// Returns changed=false when the purchase was already confirmed (and thus
// already granted). A provider tx id bound to a different purchase is a
// conflict.
func (r *PurchaseRepo) ConfirmAndGrant(ctx context.Context, purchaseID, provider, providerTxID string, payload map[string]any) (PurchaseRecord, bool, error) {
	if r.pool == nil {
		return PurchaseRecord{}, false, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(purchaseID) == "" || strings.TrimSpace(provider) == "" || strings.TrimSpace(providerTxID) == "" {
		return PurchaseRecord{}, false, fmt.Errorf("invalid purchase confirm payload")
	}

	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return PurchaseRecord{}, false, err
	}

	var (
		record  PurchaseRecord
		changed bool
	)
	err = WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		existing, err := r.scanOne(txCtx, tx, `
SELECT id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
FROM purchases
WHERE provider = $1 AND external_tx_id = $2
LIMIT 1
`, provider, providerTxID)
		if err == nil && existing.ID != purchaseID {
			return ErrProviderTxConflict
		}
		if err != nil && !errors.Is(err, ErrPurchaseNotFound) {
			return err
		}

		var rawPayload []byte
		err = tx.QueryRow(txCtx, `
UPDATE purchases
SET
	status = 'confirmed',
	external_tx_id = $3,
	payload = $4,
	updated_at = NOW()
WHERE id = $1 AND provider = $2 AND status = 'pending'
RETURNING id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
`, purchaseID, provider, providerTxID, payloadJSON).Scan(
			&record.ID,
			&record.UserID,
			&record.SKU,
			&record.PlanName,
			&record.Amount,
			&record.Provider,
			&record.ExternalTxID,
			&record.Status,
			&rawPayload,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				already, findErr := r.scanOne(txCtx, tx, `
SELECT id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
FROM purchases
WHERE id = $1
LIMIT 1
`, purchaseID)
				if findErr != nil {
					return findErr
				}
				record = already
				return nil
			}
			return fmt.Errorf("confirm purchase: %w", err)
		}

		record.Payload = unmarshalPayload(rawPayload)
		changed = true

		return grantPurchaseSKU(txCtx, tx, record.UserID, record.SKU)
	})
	if err != nil {
		return PurchaseRecord{}, false, err
	}

	return record, changed, nil
}

// ListConfirmedByUser returns the user's purchase history in insertion order,
// oldest first. There is no delete operation on history.
func (r *PurchaseRepo) ListConfirmedByUser(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, sku, plan_name, amount, provider, external_tx_id, status, payload, created_at, updated_at
FROM purchases
WHERE user_id = $1 AND status = 'confirmed'
ORDER BY created_at ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var records []PurchaseRecord
	for rows.Next() {
		record := PurchaseRecord{}
		var rawPayload []byte
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.SKU,
			&record.PlanName,
			&record.Amount,
			&record.Provider,
			&record.ExternalTxID,
			&record.Status,
			&rawPayload,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		record.Payload = unmarshalPayload(rawPayload)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}

	return records, nil
}

// DeleteAllForUser clears the session-scoped history on logout. Normal flow
// never removes individual records.
func (r *PurchaseRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM purchases WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("delete user purchases: %w", err)
	}

	return nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PurchaseRepo) scanOne(ctx context.Context, q rowQuerier, query string, args ...any) (PurchaseRecord, error) {
	record := PurchaseRecord{}
	var rawPayload []byte
	err := q.QueryRow(ctx, query, args...).Scan(
		&record.ID,
		&record.UserID,
		&record.SKU,
		&record.PlanName,
		&record.Amount,
		&record.Provider,
		&record.ExternalTxID,
		&record.Status,
		&rawPayload,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrPurchaseNotFound
		}
		return PurchaseRecord{}, fmt.Errorf("load purchase: %w", err)
	}

	record.Payload = unmarshalPayload(rawPayload)
	return record, nil
}

func marshalPayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal purchase payload: %w", err)
	}
	return data, nil
}

func unmarshalPayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}
