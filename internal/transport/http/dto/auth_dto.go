package dto

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthMeResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

type ResumeResponse struct {
	Action    string `json:"action"`
	ListingID string `json:"listing_id,omitempty"`
	ResumeTo  string `json:"resume_to,omitempty"`
}

type AuthTokensResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresInSec int64           `json:"expires_in_sec"`
	Me           AuthMeResponse  `json:"me"`
	Resume       *ResumeResponse `json:"resume,omitempty"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
