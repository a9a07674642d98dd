package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/infrastructure/db"
)

// VerificationRepository stores pending one-time tokens in postgres.
type VerificationRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewVerificationRepository creates a new verification token repository
func NewVerificationRepository(database *db.Database, logger *logrus.Logger) ports.VerificationRepository {
	return &VerificationRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a pending token row.
func (r *VerificationRepository) Create(ctx context.Context, t *account.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (id, account_id, token, kind)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.DB.ExecContext(ctx, query, t.ID, t.AccountID, t.Token, t.Kind)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": t.AccountID, "kind": t.Kind}).WithError(err).Error("db: failed to create verification token")
		}
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// GetByToken looks a pending token up by value and kind.
func (r *VerificationRepository) GetByToken(ctx context.Context, tokenStr string, kind account.VerificationKind) (*account.VerificationToken, error) {
	var t account.VerificationToken
	query := `
		SELECT id, account_id, token, kind, created_at
		FROM verification_tokens
		WHERE token = $1 AND kind = $2`

	err := r.db.DB.GetContext(ctx, &t, query, tokenStr, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"kind": kind}).Debug("db: verification token not found")
			}
			return nil, fmt.Errorf("verification token: %w", apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"kind": kind}).WithError(err).Error("db: failed to get verification token")
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	return &t, nil
}

// Consume applies the mutated account and deletes the token row in a single
// transaction. The delete affecting zero rows means another request consumed
// the token first; the transaction rolls back and the caller gets
// apperrors.ErrNotFound, never a double-apply.
func (r *VerificationRepository) Consume(ctx context.Context, tokenID uuid.UUID, a *account.Account) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin redemption transaction: %w", apperrors.ErrPersistence)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updateQuery := `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4, first_name = $5,
			last_name = $6, is_active = $7, is_staff = $8, is_admin = $9, updated_at = $10
		WHERE id = $1`

	if _, err := tx.ExecContext(ctx, updateQuery,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName,
		a.IsActive, a.IsStaff, a.IsAdmin, a.UpdatedAt); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": a.ID, "token_id": tokenID}).WithError(err).Error("db: failed to apply account mutation")
		}
		return fmt.Errorf("failed to apply account mutation: %w", apperrors.ErrPersistence)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = $1`, tokenID)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"token_id": tokenID}).WithError(err).Error("db: failed to delete verification token")
		}
		return fmt.Errorf("failed to delete verification token: %w", apperrors.ErrPersistence)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", apperrors.ErrPersistence)
	}
	if rowsAffected == 0 {
		// A concurrent redeemer got here first; rollback rejects this one.
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"token_id": tokenID}).Debug("db: verification token already consumed")
		}
		return fmt.Errorf("verification token already consumed: %w", apperrors.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit redemption: %w", apperrors.ErrPersistence)
	}

	return nil
}
