package dto

import "time"

// LoginRequest payload for the admin login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse returns a freshly issued credential.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyResponse reports the caller's own claim.
type VerifyResponse struct {
	Valid   bool `json:"valid"`
	IsAdmin bool `json:"isAdmin"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
