package model

import "time"

type Entitlement struct {
	UserID        int64     `json:"user_id"`
	UnlockCredits int       `json:"unlock_credits"`
	IsUnlimited   bool      `json:"is_unlimited"`
	UnlockedIDs   []string  `json:"unlocked_ids"`
	UpdatedAt     time.Time `json:"updated_at"`
}
