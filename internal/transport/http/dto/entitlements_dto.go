package dto

type EntitlementsResponse struct {
	UnlockCredits int      `json:"unlock_credits"`
	IsUnlimited   bool     `json:"is_unlimited"`
	UnlockedIDs   []string `json:"unlocked_ids"`
}

type UnlockResponse struct {
	Charged      bool                 `json:"charged"`
	Contact      ContactResponse      `json:"contact"`
	Entitlements EntitlementsResponse `json:"entitlements"`
}
