package dto

import "time"

type PlanResponse struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Amount  int    `json:"amount"`
	Credits int    `json:"credits"`
}

type PurchaseCreateRequest struct {
	SKU string `json:"sku"`
}

type PurchaseWebhookRequest struct {
	PurchaseID   string         `json:"purchase_id"`
	ProviderTxID string         `json:"provider_tx_id"`
	Payload      map[string]any `json:"payload"`
}

type PurchaseResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	PlanName  string    `json:"plan_name"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PurchaseHistoryResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
}
