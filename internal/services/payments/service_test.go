package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

type stubPurchaseStore struct {
	byID     map[string]pgrepo.PurchaseRecord
	byTxID   map[string]string
	order    []string
	grants   []string
	nextID   int
	nowStamp time.Time

	// failGrants makes the next N settlements fail atomically: the error is
	// returned and the purchase stays pending, like a rolled-back tx.
	failGrants int
}

func newStubPurchaseStore() *stubPurchaseStore {
	return &stubPurchaseStore{
		byID:     make(map[string]pgrepo.PurchaseRecord),
		byTxID:   make(map[string]string),
		nowStamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *stubPurchaseStore) CreatePending(ctx context.Context, userID int64, sku, planName string, amount int, provider string, payload map[string]any) (pgrepo.PurchaseRecord, error) {
	s.nextID++
	s.nowStamp = s.nowStamp.Add(time.Minute)
	rec := pgrepo.PurchaseRecord{
		ID:        fmt.Sprintf("p-%d", s.nextID),
		UserID:    userID,
		SKU:       sku,
		PlanName:  planName,
		Amount:    amount,
		Provider:  provider,
		Status:    "pending",
		CreatedAt: s.nowStamp,
	}
	s.byID[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

func (s *stubPurchaseStore) FindByID(ctx context.Context, purchaseID string) (pgrepo.PurchaseRecord, error) {
	rec, ok := s.byID[purchaseID]
	if !ok {
		return pgrepo.PurchaseRecord{}, pgrepo.ErrPurchaseNotFound
	}
	return rec, nil
}

func (s *stubPurchaseStore) FindByProviderTx(ctx context.Context, provider, providerTxID string) (pgrepo.PurchaseRecord, error) {
	id, ok := s.byTxID[provider+":"+providerTxID]
	if !ok {
		return pgrepo.PurchaseRecord{}, pgrepo.ErrPurchaseNotFound
	}
	return s.byID[id], nil
}

func (s *stubPurchaseStore) ConfirmAndGrant(ctx context.Context, purchaseID, provider, providerTxID string, payload map[string]any) (pgrepo.PurchaseRecord, bool, error) {
	txKey := provider + ":" + providerTxID
	if existingID, ok := s.byTxID[txKey]; ok {
		if existingID != purchaseID {
			return pgrepo.PurchaseRecord{}, false, pgrepo.ErrProviderTxConflict
		}
		return s.byID[existingID], false, nil
	}

	rec, ok := s.byID[purchaseID]
	if !ok {
		return pgrepo.PurchaseRecord{}, false, pgrepo.ErrPurchaseNotFound
	}
	if rec.Status != "pending" {
		return rec, false, nil
	}

	if s.failGrants > 0 {
		s.failGrants--
		return pgrepo.PurchaseRecord{}, false, errors.New("grant entitlements: connection reset")
	}

	rec.Status = "confirmed"
	rec.ExternalTxID = &providerTxID
	rec.Payload = payload
	s.byID[purchaseID] = rec
	s.byTxID[txKey] = purchaseID
	s.grants = append(s.grants, fmt.Sprintf("%d:%s", rec.UserID, rec.SKU))
	return rec, true, nil
}

func (s *stubPurchaseStore) ListConfirmedByUser(ctx context.Context, userID int64) ([]pgrepo.PurchaseRecord, error) {
	var out []pgrepo.PurchaseRecord
	for _, id := range s.order {
		rec := s.byID[id]
		if rec.UserID == userID && rec.Status == "confirmed" {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubPurchaseStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	for id, rec := range s.byID {
		if rec.UserID == userID {
			delete(s.byID, id)
		}
	}
	return nil
}

func newTestService() (*Service, *stubPurchaseStore) {
	store := newStubPurchaseStore()
	svc := NewService(Dependencies{
		Store: store,
		Plans: config.Default().Remote.Plans,
	})
	return svc, store
}

func TestPlansCatalogOrder(t *testing.T) {
	svc, _ := newTestService()

	plans := svc.Plans()
	if len(plans) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(plans))
	}
	if plans[0].SKU != "unlock_1" || plans[3].SKU != "unlock_unlimited" {
		t.Fatalf("unexpected plan order: %+v", plans)
	}
}

func TestCreateRejectsUnknownSKU(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), 1, "unlock_999"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestCreateThenConfirmAppliesEntitlements(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	pending, err := svc.Create(ctx, 1, "unlock_5")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pending.Status != "pending" {
		t.Fatalf("expected pending status, got %q", pending.Status)
	}
	if len(store.grants) != 0 {
		t.Fatal("nothing should be granted before confirmation")
	}

	confirmed, err := svc.Confirm(ctx, pending.ID, "tx-1", map[string]any{"signature": "ok"})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != "confirmed" {
		t.Fatalf("expected confirmed status, got %q", confirmed.Status)
	}
	if len(store.grants) != 1 || store.grants[0] != "1:unlock_5" {
		t.Fatalf("expected one entitlement grant, got %v", store.grants)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	pending, err := svc.Create(ctx, 1, "unlock_1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Confirm(ctx, pending.ID, "tx-1", nil); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	again, err := svc.Confirm(ctx, pending.ID, "tx-1", nil)
	if err != nil {
		t.Fatalf("replayed Confirm: %v", err)
	}
	if again.Status != "confirmed" {
		t.Fatalf("expected confirmed status on replay, got %q", again.Status)
	}
	if len(store.grants) != 1 {
		t.Fatalf("expected a single grant after replay, got %v", store.grants)
	}
}

func TestConfirmRetriesGrantAfterFailure(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	pending, err := svc.Create(ctx, 1, "unlock_5")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.failGrants = 1
	if _, err := svc.Confirm(ctx, pending.ID, "tx-1", nil); err == nil {
		t.Fatal("expected the failed settlement to surface an error")
	}

	// The settlement rolled back: still pending, nothing granted, so the
	// provider retry must not be treated as a duplicate.
	rec, err := store.FindByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if rec.Status != "pending" {
		t.Fatalf("expected purchase to stay pending after a failed grant, got %q", rec.Status)
	}
	if len(store.grants) != 0 {
		t.Fatalf("expected no grant after rollback, got %v", store.grants)
	}

	retried, err := svc.Confirm(ctx, pending.ID, "tx-1", nil)
	if err != nil {
		t.Fatalf("retried Confirm: %v", err)
	}
	if retried.Status != "confirmed" {
		t.Fatalf("expected confirmed status on retry, got %q", retried.Status)
	}
	if len(store.grants) != 1 || store.grants[0] != "1:unlock_5" {
		t.Fatalf("expected exactly one grant after retry, got %v", store.grants)
	}
}

func TestConfirmProviderTxConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, "unlock_1")
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(ctx, 1, "unlock_1")
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if _, err := svc.Confirm(ctx, first.ID, "tx-1", nil); err != nil {
		t.Fatalf("Confirm first: %v", err)
	}
	if _, err := svc.Confirm(ctx, second.ID, "tx-1", nil); !errors.Is(err, ErrProviderTxConflict) {
		t.Fatalf("expected ErrProviderTxConflict, got %v", err)
	}
}

func TestHistoryAscendingAndConfirmedOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, 1, "unlock_1")
	second, _ := svc.Create(ctx, 1, "unlock_5")
	if _, err := svc.Create(ctx, 1, "unlock_10"); err != nil {
		t.Fatalf("Create pending: %v", err)
	}

	if _, err := svc.Confirm(ctx, first.ID, "tx-1", nil); err != nil {
		t.Fatalf("Confirm first: %v", err)
	}
	if _, err := svc.Confirm(ctx, second.ID, "tx-2", nil); err != nil {
		t.Fatalf("Confirm second: %v", err)
	}

	history, err := svc.History(ctx, 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 confirmed purchases, got %d", len(history))
	}
	if history[0].SKU != "unlock_1" || history[1].SKU != "unlock_5" {
		t.Fatalf("expected oldest-first order, got %v then %v", history[0].SKU, history[1].SKU)
	}
}
