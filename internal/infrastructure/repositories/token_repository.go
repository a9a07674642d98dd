package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/infrastructure/db"
)

// TokenRepository stores hashed refresh tokens and the logout blacklist in
// postgres.
type TokenRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(database *db.Database, logger *logrus.Logger) ports.TokenRepository {
	return &TokenRepository{db: database, logger: logger}
}

// StoreRefreshToken stores a refresh token hash in the database
func (r *TokenRepository) StoreRefreshToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.DB.ExecContext(ctx, query,
		uuid.New(), accountID, tokenHash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token from the database
func (r *TokenRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	var refreshToken ports.RefreshToken
	query := `
		SELECT id, account_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()`

	err := r.db.DB.GetContext(ctx, &refreshToken, query, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("refresh token not found or expired")
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &refreshToken, nil
}

// DeleteRefreshToken deletes a specific refresh token from the database
func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`

	_, err := r.db.DB.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// BlacklistToken adds a token hash to the blacklist
func (r *TokenRepository) BlacklistToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO blacklisted_tokens (id, account_id, token_hash, expires_at, created_at, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_hash) DO NOTHING`

	_, err := r.db.DB.ExecContext(ctx, query,
		uuid.New(), accountID, tokenHash, expiresAt, time.Now(), "logout")
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsTokenBlacklisted checks if a token hash is blacklisted
func (r *TokenRepository) IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM blacklisted_tokens
		WHERE token_hash = $1 AND expires_at > NOW()`

	err := r.db.DB.GetContext(ctx, &count, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to check if token is blacklisted: %w", err)
	}

	return count > 0, nil
}

// DeleteExpiredRefreshTokens removes expired refresh tokens
func (r *TokenRepository) DeleteExpiredRefreshTokens(ctx context.Context) error {
	query := `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`

	result, err := r.db.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"count": rows}).Debug("db: expired refresh tokens removed")
	}

	return nil
}

// DeleteExpiredBlacklistedTokens removes expired blacklist entries
func (r *TokenRepository) DeleteExpiredBlacklistedTokens(ctx context.Context) error {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at <= NOW()`

	result, err := r.db.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to delete expired blacklisted tokens: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"count": rows}).Debug("db: expired blacklisted tokens removed")
	}

	return nil
}
