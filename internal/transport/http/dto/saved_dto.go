package dto

type SavedToggleResponse struct {
	ListingID string `json:"listing_id"`
	Saved     bool   `json:"saved"`
}

type SavedListResponse struct {
	Listings []ListingResponse `json:"listings"`
}
