package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pitchapp/pitch-api/internal/core/domain/account"
)

// LoginRequest represents the login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthTokens represents the issued token pair.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult is the full login response: the account profile alongside the
// token pair.
type LoginResult struct {
	User account.Profile `json:"user"`
	AuthTokens
}

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	IsAdmin   bool      `json:"is_admin"`

	jwt.RegisteredClaims
}
