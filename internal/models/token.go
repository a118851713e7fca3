package models

import "time"

// TokenValidation is the result of checking a self-service token. Invalid
// and expired tokens are reported here rather than as errors.
type TokenValidation struct {
	IsValid        bool    `json:"is_valid"`
	Actor          *Actor  `json:"actor,omitempty"`
	Error          string  `json:"error,omitempty"`
	RemainingHours float64 `json:"remaining_hours,omitempty"`
}

// Token validation outcomes.
const (
	TokenErrInvalid = "Invalid token"
	TokenErrExpired = "Token expired"
)

// IssuedToken is returned when a token is generated or refreshed.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
