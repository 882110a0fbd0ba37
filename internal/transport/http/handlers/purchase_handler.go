package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	paymentsvc "github.com/viraj01032007/setmystay/backend/internal/services/payments"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type PurchaseHandler struct {
	payments *paymentsvc.Service
}

func NewPurchaseHandler(payments *paymentsvc.Service) *PurchaseHandler {
	return &PurchaseHandler{payments: payments}
}

func (h *PurchaseHandler) Plans(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	plans := h.payments.Plans()
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, dto.PlanResponse{
			SKU:     plan.SKU,
			Name:    plan.Name,
			Amount:  plan.Amount,
			Credits: plan.Credits,
		})
	}
	httperrors.Write(w, http.StatusOK, out)
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PurchaseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	record, err := h.payments.Create(r.Context(), identity.UserID, req.SKU)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation), errors.Is(err, paymentsvc.ErrUnknownPlan):
			writeBadRequest(w, "VALIDATION_ERROR", "unknown plan sku")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create purchase")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, purchaseResponse(record))
}

// Webhook is the provider callback confirming payment. It is idempotent: the
// provider may retry and the purchase is settled exactly once.
func (h *PurchaseHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.PurchaseWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	record, err := h.payments.Confirm(r.Context(), req.PurchaseID, req.ProviderTxID, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
		case errors.Is(err, paymentsvc.ErrPurchaseNotFound):
			writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
		case errors.Is(err, paymentsvc.ErrProviderTxConflict):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "PROVIDER_TX_CONFLICT",
				Message: "provider transaction already settled another purchase",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to confirm purchase")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, purchaseResponse(record))
}

func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	purchases, err := h.payments.History(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load purchase history")
		return
	}

	out := make([]dto.PurchaseResponse, 0, len(purchases))
	for _, purchase := range purchases {
		out = append(out, dto.PurchaseResponse{
			ID:        purchase.ID,
			SKU:       string(purchase.SKU),
			PlanName:  purchase.PlanName,
			Amount:    purchase.Amount,
			Status:    purchase.Status,
			CreatedAt: purchase.PurchasedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.PurchaseHistoryResponse{Purchases: out})
}

func purchaseResponse(record pgrepo.PurchaseRecord) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:        record.ID,
		SKU:       record.SKU,
		PlanName:  record.PlanName,
		Amount:    record.Amount,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}
}
