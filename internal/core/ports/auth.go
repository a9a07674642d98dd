package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pitchapp/pitch-api/internal/core/domain/auth"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*auth.AuthTokens, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, accountID uuid.UUID, token string) error
	GetTokenHash(token string) string
}

// TokenRepository stores hashed refresh tokens and the logout blacklist.
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	BlacklistToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error)

	// Cleanup methods for periodic maintenance
	DeleteExpiredRefreshTokens(ctx context.Context) error
	DeleteExpiredBlacklistedTokens(ctx context.Context) error
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	TokenHash string    `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
