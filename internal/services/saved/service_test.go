package saved

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

type stubStore struct {
	set   map[string]bool
	order []string
}

func newStubStore() *stubStore {
	return &stubStore{set: make(map[string]bool)}
}

func (s *stubStore) Toggle(ctx context.Context, userID int64, listingID string) (bool, error) {
	if s.set[listingID] {
		delete(s.set, listingID)
		for i, id := range s.order {
			if id == listingID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false, nil
	}
	s.set[listingID] = true
	s.order = append(s.order, listingID)
	return true, nil
}

func (s *stubStore) ListIDs(ctx context.Context, userID int64) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

func (s *stubStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	s.set = make(map[string]bool)
	s.order = nil
	return nil
}

type stubListingStore struct {
	listings map[string]pgrepo.ListingRecord
	catalog  []string
}

func (s stubListingStore) FindByID(ctx context.Context, listingID string) (pgrepo.ListingRecord, error) {
	rec, ok := s.listings[listingID]
	if !ok {
		return pgrepo.ListingRecord{}, pgrepo.ErrListingNotFound
	}
	return rec, nil
}

func (s stubListingStore) ListByIDs(ctx context.Context, ids []string, status string) ([]pgrepo.ListingRecord, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []pgrepo.ListingRecord
	for _, id := range s.catalog {
		rec := s.listings[id]
		if want[id] && rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newTestService() (*Service, *stubStore) {
	store := newStubStore()
	listings := stubListingStore{
		listings: map[string]pgrepo.ListingRecord{
			"l-1": {ID: "l-1", Status: "approved"},
			"l-2": {ID: "l-2", Status: "approved"},
			"l-3": {ID: "l-3", Status: "pending"},
		},
		catalog: []string{"l-2", "l-1", "l-3"},
	}
	return NewService(Dependencies{Store: store, Listings: listings}), store
}

func TestToggleInvolution(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	savedNow, err := svc.Toggle(ctx, 1, "l-1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !savedNow {
		t.Fatal("expected listing saved after first toggle")
	}

	savedNow, err = svc.Toggle(ctx, 1, "l-1")
	if err != nil {
		t.Fatalf("second Toggle: %v", err)
	}
	if savedNow {
		t.Fatal("expected listing removed after second toggle")
	}
	if len(store.set) != 0 {
		t.Fatalf("expected empty set, got %v", store.set)
	}
}

func TestToggleUnknownListing(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Toggle(context.Background(), 1, "l-missing"); !errors.Is(err, pgrepo.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestListFollowsCatalogOrderAndSkipsUnapproved(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, id := range []string{"l-1", "l-2", "l-3"} {
		if _, err := svc.Toggle(ctx, 1, id); err != nil {
			t.Fatalf("Toggle %s: %v", id, err)
		}
	}

	records, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 approved listings, got %d", len(records))
	}
	// Catalog order, not save order.
	if records[0].ID != "l-2" || records[1].ID != "l-1" {
		t.Fatalf("expected catalog order l-2, l-1; got %s, %s", records[0].ID, records[1].ID)
	}
}

func TestListEmptySet(t *testing.T) {
	svc, _ := newTestService()

	records, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty result, got %v", records)
	}
}
