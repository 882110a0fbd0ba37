package saved

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

var ErrValidation = errors.New("validation failed")

type Store interface {
	Toggle(ctx context.Context, userID int64, listingID string) (bool, error)
	ListIDs(ctx context.Context, userID int64) ([]string, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type ListingStore interface {
	FindByID(ctx context.Context, listingID string) (pgrepo.ListingRecord, error)
	ListByIDs(ctx context.Context, ids []string, status string) ([]pgrepo.ListingRecord, error)
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
	return &Service{store: deps.Store, listings: deps.Listings, log: log}
}

// Toggle flips membership of the listing in the user's saved set and reports
// whether it is saved afterwards. Toggling twice restores the original state.
func (s *Service) Toggle(ctx context.Context, userID int64, listingID string) (bool, error) {
	listingID = strings.TrimSpace(listingID)
	if userID <= 0 || listingID == "" {
		return false, ErrValidation
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, pgrepo.ErrListingNotFound) {
			return false, pgrepo.ErrListingNotFound
		}
		return false, fmt.Errorf("load listing: %w", err)
	}

	savedNow, err := s.store.Toggle(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("toggle saved listing: %w", err)
	}

	s.log.Debug("saved listing toggled",
		zap.Int64("user_id", userID),
		zap.String("listing_id", listingID),
		zap.Bool("saved", savedNow),
	)

	return savedNow, nil
}

// List materializes the saved set as full listings. Saved ids whose listing
// was removed or is no longer approved are silently skipped; the ids stay in
// the set and reappear if the listing is approved again.
func (s *Service) List(ctx context.Context, userID int64) ([]pgrepo.ListingRecord, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	ids, err := s.store.ListIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved ids: %w", err)
	}
	if len(ids) == 0 {
		return []pgrepo.ListingRecord{}, nil
	}

	records, err := s.listings.ListByIDs(ctx, ids, string(enums.ModerationStatusApproved))
	if err != nil {
		return nil, fmt.Errorf("materialize saved listings: %w", err)
	}
	return records, nil
}

// IDs returns the raw saved set, for marking listings in browse responses.
func (s *Service) IDs(ctx context.Context, userID int64) (map[string]bool, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	ids, err := s.store.ListIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved ids: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
