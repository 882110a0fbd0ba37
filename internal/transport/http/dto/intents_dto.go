package dto

type IntentRequest struct {
	Action    string `json:"action"`
	ListingID string `json:"listing_id,omitempty"`
}

type IntentResponse struct {
	OK bool `json:"ok"`
}
