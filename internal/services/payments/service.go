package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnknownPlan        = errors.New("unknown plan sku")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrProviderTxConflict = errors.New("provider transaction already used")
)

const defaultProvider = "razorpay"

type PurchaseStore interface {
	CreatePending(ctx context.Context, userID int64, sku, planName string, amount int, provider string, payload map[string]any) (pgrepo.PurchaseRecord, error)
	FindByID(ctx context.Context, purchaseID string) (pgrepo.PurchaseRecord, error)
	FindByProviderTx(ctx context.Context, provider, providerTxID string) (pgrepo.PurchaseRecord, error)
	ConfirmAndGrant(ctx context.Context, purchaseID, provider, providerTxID string, payload map[string]any) (pgrepo.PurchaseRecord, bool, error)
	ListConfirmedByUser(ctx context.Context, userID int64) ([]pgrepo.PurchaseRecord, error)
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// Plan is a purchasable unlock plan. The set of SKUs is closed; amounts and
// display names come from config so pricing can change without a deploy.
type Plan struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Amount  int    `json:"amount"`
	Credits int    `json:"credits"`
}

type Dependencies struct {
	Store PurchaseStore
	Plans []config.PlanConfig
	Log   *zap.Logger
}

type Service struct {
	store PurchaseStore
	plans map[string]Plan
	order []string
	log   *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	svc := &Service{
		store: deps.Store,
		plans: make(map[string]Plan, len(deps.Plans)),
		log:   log,
	}
	for _, p := range deps.Plans {
		sku := strings.ToLower(strings.TrimSpace(p.SKU))
		if sku == "" {
			continue
		}
		if _, dup := svc.plans[sku]; dup {
			continue
		}
		svc.plans[sku] = Plan{SKU: sku, Name: p.Name, Amount: p.Amount, Credits: p.Credits}
		svc.order = append(svc.order, sku)
	}
	return svc
}

// Plans returns the plan catalog in config order.
func (s *Service) Plans() []Plan {
	out := make([]Plan, 0, len(s.order))
	for _, sku := range s.order {
		out = append(out, s.plans[sku])
	}
	return out
}

// Create opens a pending purchase for the given plan. Nothing is granted
// until the provider confirms it.
func (s *Service) Create(ctx context.Context, userID int64, sku string) (pgrepo.PurchaseRecord, error) {
	sku = strings.ToLower(strings.TrimSpace(sku))
	if userID <= 0 || sku == "" {
		return pgrepo.PurchaseRecord{}, ErrValidation
	}

	plan, ok := s.plans[sku]
	if !ok {
		return pgrepo.PurchaseRecord{}, ErrUnknownPlan
	}

	record, err := s.store.CreatePending(ctx, userID, plan.SKU, plan.Name, plan.Amount, defaultProvider, nil)
	if err != nil {
		return pgrepo.PurchaseRecord{}, fmt.Errorf("create pending purchase: %w", err)
	}

	s.log.Info("purchase created",
		zap.Int64("user_id", userID),
		zap.String("purchase_id", record.ID),
		zap.String("sku", plan.SKU),
	)

	return record, nil
}

// Confirm settles a pending purchase against a provider transaction and
// applies the plan to the user's entitlements. The store commits both in one
// transaction, so a failed grant leaves the purchase pending and the provider
// retry re-attempts the whole settlement. Replaying an already-settled
// transaction is a no-op: the purchase is returned again and nothing is
// granted twice.
func (s *Service) Confirm(ctx context.Context, purchaseID, providerTxID string, payload map[string]any) (pgrepo.PurchaseRecord, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	providerTxID = strings.TrimSpace(providerTxID)
	if purchaseID == "" || providerTxID == "" {
		return pgrepo.PurchaseRecord{}, ErrValidation
	}

	record, changed, err := s.store.ConfirmAndGrant(ctx, purchaseID, defaultProvider, providerTxID, payload)
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrPurchaseNotFound):
			return pgrepo.PurchaseRecord{}, ErrPurchaseNotFound
		case errors.Is(err, pgrepo.ErrProviderTxConflict):
			return pgrepo.PurchaseRecord{}, ErrProviderTxConflict
		}
		return pgrepo.PurchaseRecord{}, fmt.Errorf("confirm purchase: %w", err)
	}

	if !changed {
		// Duplicate confirmation; the grant already committed with it.
		return record, nil
	}

	s.log.Info("purchase confirmed",
		zap.Int64("user_id", record.UserID),
		zap.String("purchase_id", record.ID),
		zap.String("sku", record.SKU),
	)

	return record, nil
}

// History lists the user's confirmed purchases, oldest first.
func (s *Service) History(ctx context.Context, userID int64) ([]model.Purchase, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	records, err := s.store.ListConfirmedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	out := make([]model.Purchase, 0, len(records))
	for _, rec := range records {
		out = append(out, model.Purchase{
			ID:          rec.ID,
			UserID:      rec.UserID,
			SKU:         enums.PlanSKU(rec.SKU),
			PlanName:    rec.PlanName,
			Amount:      rec.Amount,
			Provider:    rec.Provider,
			Status:      rec.Status,
			PurchasedAt: rec.CreatedAt,
		})
	}
	return out, nil
}
