package models

import "time"

// TokenResponse is the issued bearer token plus its metadata.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	BusinessID  string    `json:"business_id"`
	TokenID     string    `json:"token_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
