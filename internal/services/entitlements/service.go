package entitlements

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	"github.com/viraj01032007/setmystay/backend/internal/domain/rules"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrListingNotFound  = errors.New("listing not found")
	ErrPurchaseRequired = errors.New("purchase required")
)

type Store interface {
	GetSnapshot(ctx context.Context, userID int64) (model.Entitlement, error)
	IsUnlocked(ctx context.Context, userID int64, listingID string) (bool, error)
	Unlock(ctx context.Context, userID int64, listingID string) (bool, error)
	Reset(ctx context.Context, userID int64) error
}

type ListingStore interface {
	FindByID(ctx context.Context, listingID string) (pgrepo.ListingRecord, error)
}

// Snapshot is the user-facing entitlement state.
type Snapshot struct {
	UnlockCredits int
	IsUnlimited   bool
	UnlockedIDs   []string
}

type UnlockResult struct {
	Charged  bool
	Snapshot Snapshot
}

type Dependencies struct {
	Store    Store
	Listings ListingStore
	Log      *zap.Logger
}

type Service struct {
	store    Store
	listings ListingStore
	log      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		listings: deps.Listings,
		log:      log,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}

	record, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get entitlement snapshot: %w", err)
	}

	return snapshotFromLedger(rules.LedgerFromSnapshot(record.UnlockCredits, record.IsUnlimited, record.UnlockedIDs)), nil
}

func (s *Service) IsUnlocked(ctx context.Context, userID int64, listingID string) (bool, error) {
	if userID <= 0 || strings.TrimSpace(listingID) == "" {
		return false, ErrValidation
	}
	unlocked, err := s.store.IsUnlocked(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("check unlocked: %w", err)
	}
	return unlocked, nil
}

// Unlock reveals a listing's contact for the user, spending one credit unless
// the listing is already unlocked or the ledger is unlimited. Insufficient
// credits is a normal outcome, reported as ErrPurchaseRequired.
func (s *Service) Unlock(ctx context.Context, userID int64, listingID string) (UnlockResult, error) {
	listingID = strings.TrimSpace(listingID)
	if userID <= 0 || listingID == "" {
		return UnlockResult{}, ErrValidation
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrListingNotFound) {
			return UnlockResult{}, ErrListingNotFound
		}
		return UnlockResult{}, fmt.Errorf("load listing: %w", err)
	}
	if listing.Status != string(enums.ModerationStatusApproved) {
		return UnlockResult{}, ErrListingNotFound
	}

	charged, err := s.store.Unlock(ctx, userID, listingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInsufficientUnlockCredits) {
			return UnlockResult{}, ErrPurchaseRequired
		}
		return UnlockResult{}, fmt.Errorf("unlock listing: %w", err)
	}

	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return UnlockResult{}, err
	}

	s.log.Info("listing unlocked",
		zap.Int64("user_id", userID),
		zap.String("listing_id", listingID),
		zap.Bool("charged", charged),
	)

	return UnlockResult{Charged: charged, Snapshot: snapshot}, nil
}

func (s *Service) Reset(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if err := s.store.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset entitlements: %w", err)
	}
	return nil
}

func snapshotFromLedger(ledger rules.Ledger) Snapshot {
	ids := ledger.UnlockedIDs()
	sort.Strings(ids)
	return Snapshot{
		UnlockCredits: ledger.UnlockCredits,
		IsUnlimited:   ledger.IsUnlimited,
		UnlockedIDs:   ids,
	}
}
