package models

import "time"

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	AcademyID    string    `json:"academy_id"`
	Role         Role      `json:"role"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshSession is the redis payload stored under the refresh token hash.
type RefreshSession struct {
	UserID    string    `json:"user_id"`
	AcademyID string    `json:"academy_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
