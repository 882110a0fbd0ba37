package model

import (
	"time"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
)

type Purchase struct {
	ID          string        `json:"id"`
	UserID      int64         `json:"user_id"`
	SKU         enums.PlanSKU `json:"sku"`
	PlanName    string        `json:"plan_name"`
	Amount      int           `json:"amount"`
	Provider    string        `json:"provider"`
	Status      string        `json:"status"`
	PurchasedAt time.Time     `json:"purchased_at"`
}
