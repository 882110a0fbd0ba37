package dto

import "time"

type SubmitListingRequest struct {
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	City         string `json:"city"`
	Rent         int    `json:"rent"`
	Description  string `json:"description"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

type ContactResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type ListingResponse struct {
	ID          string           `json:"id"`
	Kind        string           `json:"kind"`
	Title       string           `json:"title"`
	City        string           `json:"city"`
	Rent        int              `json:"rent"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	Saved       bool             `json:"saved"`
	Unlocked    bool             `json:"unlocked"`
	Contact     *ContactResponse `json:"contact,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ListingsResponse struct {
	Listings []ListingResponse `json:"listings"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

type ModerateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
