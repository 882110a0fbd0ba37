package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	entsvc "github.com/viraj01032007/setmystay/backend/internal/services/entitlements"
	listingsvc "github.com/viraj01032007/setmystay/backend/internal/services/listings"
)

type memListingStore struct {
	byID map[string]pgrepo.ListingRecord
}

func (s *memListingStore) Create(_ context.Context, rec pgrepo.ListingRecord) (pgrepo.ListingRecord, error) {
	s.byID[rec.ID] = rec
	return rec, nil
}

func (s *memListingStore) FindByID(_ context.Context, id string) (pgrepo.ListingRecord, error) {
	rec, ok := s.byID[id]
	if !ok {
		return pgrepo.ListingRecord{}, pgrepo.ErrListingNotFound
	}
	return rec, nil
}

func (s *memListingStore) List(_ context.Context, filter pgrepo.ListingFilter) ([]pgrepo.ListingRecord, error) {
	var out []pgrepo.ListingRecord
	for _, rec := range s.byID {
		if rec.Status == filter.Status && rec.Kind == filter.Kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memListingStore) UpdateStatus(_ context.Context, id, status string) (pgrepo.ListingRecord, error) {
	rec, ok := s.byID[id]
	if !ok {
		return pgrepo.ListingRecord{}, pgrepo.ErrListingNotFound
	}
	rec.Status = status
	s.byID[id] = rec
	return rec, nil
}

type memEntitlementStore struct {
	credits  int
	unlocked map[string]bool
}

func (s *memEntitlementStore) GetSnapshot(_ context.Context, userID int64) (model.Entitlement, error) {
	ids := make([]string, 0, len(s.unlocked))
	for id := range s.unlocked {
		ids = append(ids, id)
	}
	return model.Entitlement{UserID: userID, UnlockCredits: s.credits, UnlockedIDs: ids}, nil
}

func (s *memEntitlementStore) IsUnlocked(_ context.Context, _ int64, listingID string) (bool, error) {
	return s.unlocked[listingID], nil
}

func (s *memEntitlementStore) Unlock(_ context.Context, _ int64, listingID string) (bool, error) {
	if s.unlocked[listingID] {
		return false, nil
	}
	if s.credits < 1 {
		return false, pgrepo.ErrInsufficientUnlockCredits
	}
	s.credits--
	s.unlocked[listingID] = true
	return true, nil
}

func (s *memEntitlementStore) Reset(_ context.Context, _ int64) error {
	s.credits = 0
	s.unlocked = make(map[string]bool)
	return nil
}

func newUnlockFixture(credits int) *ListingsHandler {
	store := &memListingStore{byID: map[string]pgrepo.ListingRecord{
		"l-1": {ID: "l-1", OwnerUserID: 9, Kind: "property", Title: "2BHK", City: "Pune", Rent: 15000, Status: "approved", ContactName: "Owner", ContactPhone: "+91 9000000000"},
	}}
	entStore := &memEntitlementStore{credits: credits, unlocked: make(map[string]bool)}

	entService := entsvc.NewService(entsvc.Dependencies{Store: entStore, Listings: store})
	listingService := listingsvc.NewService(listingsvc.Dependencies{
		Store:        store,
		Entitlements: entStore,
		Cfg:          config.Default().Remote.Listing,
	})
	return NewListingsHandler(listingService, entService, nil)
}

func unlockRequest(t *testing.T, h *ListingsHandler, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/listings/{listingID}/unlock", h.Unlock)

	req := httptest.NewRequest(http.MethodPost, "/listings/l-1/unlock", nil)
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-1",
		Role:   "USER",
	}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUnlockRevealsContact(t *testing.T) {
	h := newUnlockFixture(1)

	rr := unlockRequest(t, h, 2)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var body struct {
		Charged bool `json:"charged"`
		Contact struct {
			Phone string `json:"phone"`
		} `json:"contact"`
		Entitlements struct {
			UnlockCredits int `json:"unlock_credits"`
		} `json:"entitlements"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Charged {
		t.Fatal("expected unlock to charge")
	}
	if body.Contact.Phone != "+91 9000000000" {
		t.Fatalf("expected contact phone revealed, got %q", body.Contact.Phone)
	}
	if body.Entitlements.UnlockCredits != 0 {
		t.Fatalf("expected 0 credits left, got %d", body.Entitlements.UnlockCredits)
	}
}

func TestUnlockWithoutCreditsIs402(t *testing.T) {
	h := newUnlockFixture(0)

	rr := unlockRequest(t, h, 2)
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusPaymentRequired)
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Code != "PURCHASE_REQUIRED" {
		t.Fatalf("expected PURCHASE_REQUIRED, got %q", body.Code)
	}
}
