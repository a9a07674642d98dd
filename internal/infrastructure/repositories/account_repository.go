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

// AccountRepository implements the account repository interface
type AccountRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(database *db.Database, logger *logrus.Logger) ports.AccountRepository {
	return &AccountRepository{
		db:     database,
		logger: logger,
	}
}

const accountColumns = `id, username, email, password_hash, first_name, last_name,
	   is_active, is_staff, is_admin, date_joined, updated_at`

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var a account.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"account_id": id}).Debug("db: account not found by ID")
			}
			return nil, fmt.Errorf("account with ID %s: %w", id, apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": id}).WithError(err).Error("db: failed to get account by ID")
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &a, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	var a account.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	err := r.db.DB.GetContext(ctx, &a, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"username": username}).Debug("db: account not found by username")
			}
			return nil, fmt.Errorf("account with username %s: %w", username, apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to get account by username")
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}

	return &a, nil
}

// GetActiveByUsernameEmail retrieves the active account matching both
// username and email.
func (r *AccountRepository) GetActiveByUsernameEmail(ctx context.Context, username, email string) (*account.Account, error) {
	var a account.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 AND email = $2 AND is_active = TRUE`

	err := r.db.DB.GetContext(ctx, &a, query, username, email)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"username": username}).Debug("db: no active account for username+email")
			}
			return nil, fmt.Errorf("active account with username %s: %w", username, apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to get account by username+email")
		}
		return nil, fmt.Errorf("failed to get account by username+email: %w", err)
	}

	return &a, nil
}
