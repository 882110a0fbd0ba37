package model

import "time"

// Session is the server-side session backing an access/refresh token pair.
// The SID travels inside the access token; the refresh token is stored next
// to the session, not on it, so rotating it never rewrites the session.
type Session struct {
	SID       string    `json:"sid"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
