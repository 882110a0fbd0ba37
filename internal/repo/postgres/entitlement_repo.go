package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
)

var (
	ErrInsufficientUnlockCredits = errors.New("insufficient unlock credits")
	ErrUnsupportedPlanSKU        = errors.New("unsupported plan sku")
)

type EntitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

func (r *EntitlementRepo) GetSnapshot(ctx context.Context, userID int64) (model.Entitlement, error) {
	if userID <= 0 {
		return model.Entitlement{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Entitlement{UserID: userID}, nil
	}

	snapshot := model.Entitlement{UserID: userID}
	err := r.pool.QueryRow(ctx, `
SELECT unlock_credits, is_unlimited, updated_at
FROM entitlements
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&snapshot.UnlockCredits, &snapshot.IsUnlimited, &snapshot.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Entitlement{}, fmt.Errorf("get entitlement snapshot: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT listing_id
FROM unlocked_listings
WHERE user_id = $1
`, userID)
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("list unlocked ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return model.Entitlement{}, fmt.Errorf("scan unlocked id: %w", err)
		}
		snapshot.UnlockedIDs = append(snapshot.UnlockedIDs, id)
	}
	if err := rows.Err(); err != nil {
		return model.Entitlement{}, fmt.Errorf("iterate unlocked ids: %w", err)
	}

	return snapshot, nil
}

func (r *EntitlementRepo) IsUnlocked(ctx context.Context, userID int64, listingID string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(listingID) == "" {
		return false, fmt.Errorf("invalid unlock lookup payload")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM unlocked_listings
WHERE user_id = $1 AND listing_id = $2
LIMIT 1
`, userID, listingID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check unlocked listing: %w", err)
	}

	return true, nil
}

// ConsumeUnlock records the unlock and spends one credit in a single
// transaction. Re-unlocking an already-unlocked listing succeeds without a
// decrement; an unlimited ledger never decrements. On insufficient credits
// the transaction rolls back and nothing is observable.
func (r *EntitlementRepo) ConsumeUnlock(ctx context.Context, tx pgx.Tx, userID int64, listingID string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(listingID) == "" {
		return false, fmt.Errorf("invalid unlock payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	if err := ensureEntitlementRow(ctx, tx, userID); err != nil {
		return false, err
	}

	inserted, err := tx.Exec(ctx, `
INSERT INTO unlocked_listings (user_id, listing_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, listing_id) DO NOTHING
`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("record unlocked listing: %w", err)
	}
	if inserted.RowsAffected() == 0 {
		// Already unlocked; permanent reveal, no charge.
		return false, nil
	}

	var unlimited bool
	if err := tx.QueryRow(ctx, `
SELECT is_unlimited
FROM entitlements
WHERE user_id = $1
FOR UPDATE
`, userID).Scan(&unlimited); err != nil {
		return false, fmt.Errorf("lock entitlement row: %w", err)
	}
	if unlimited {
		return true, nil
	}

	result, err := tx.Exec(ctx, `
UPDATE entitlements
SET
	unlock_credits = unlock_credits - 1,
	updated_at = NOW()
WHERE
	user_id = $1
	AND unlock_credits >= 1
`, userID)
	if err != nil {
		return false, fmt.Errorf("consume unlock credit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, ErrInsufficientUnlockCredits
	}

	return true, nil
}

// Unlock runs ConsumeUnlock inside its own transaction.
func (r *EntitlementRepo) Unlock(ctx context.Context, userID int64, listingID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var charged bool
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var txErr error
		charged, txErr = r.ConsumeUnlock(txCtx, tx, userID, listingID)
		return txErr
	})
	if err != nil {
		return false, err
	}
	return charged, nil
}

// grantPurchaseSKU applies a plan grant inside the caller's transaction, so
// a purchase confirmation and its grant commit or roll back together.
func grantPurchaseSKU(ctx context.Context, tx pgx.Tx, userID int64, sku string) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	credits, unlimited, ok := planGrant(strings.ToLower(strings.TrimSpace(sku)))
	if !ok {
		return ErrUnsupportedPlanSKU
	}

	if err := ensureEntitlementRow(ctx, tx, userID); err != nil {
		return err
	}

	if unlimited {
		if _, err := tx.Exec(ctx, `
UPDATE entitlements
SET
	is_unlimited = TRUE,
	updated_at = NOW()
WHERE user_id = $1
`, userID); err != nil {
			return fmt.Errorf("apply unlimited entitlement: %w", err)
		}
		return nil
	}

	if _, err := tx.Exec(ctx, `
UPDATE entitlements
SET
	unlock_credits = unlock_credits + $2,
	updated_at = NOW()
WHERE user_id = $1
`, userID, credits); err != nil {
		return fmt.Errorf("apply unlock credits: %w", err)
	}

	return nil
}

// Reset restores the zero-value ledger for the user, removing credits, the
// unlimited flag and all unlocked ids. Used by the logout flow only.
func (r *EntitlementRepo) Reset(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM unlocked_listings WHERE user_id = $1
`, userID); err != nil {
			return fmt.Errorf("reset unlocked listings: %w", err)
		}

		if _, err := tx.Exec(ctx, `
UPDATE entitlements
SET
	unlock_credits = 0,
	is_unlimited = FALSE,
	updated_at = NOW()
WHERE user_id = $1
`, userID); err != nil {
			return fmt.Errorf("reset entitlement row: %w", err)
		}

		return nil
	})
}

func ensureEntitlementRow(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO entitlements (user_id, unlock_credits, is_unlimited, updated_at)
VALUES ($1, 0, FALSE, NOW())
ON CONFLICT (user_id) DO NOTHING
`, userID); err != nil {
		return fmt.Errorf("ensure entitlements row: %w", err)
	}
	return nil
}

func planGrant(sku string) (credits int, unlimited bool, ok bool) {
	switch sku {
	case "unlock_1":
		return 1, false, true
	case "unlock_5":
		return 5, false, true
	case "unlock_10":
		return 10, false, true
	case "unlock_unlimited":
		return 0, true, true
	default:
		return 0, false, false
	}
}
