package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/domain/pitch"
	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/infrastructure/db"
)

// uniqueViolation is the postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// FavoriteRepository stores favorite marks in postgres.
type FavoriteRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(database *db.Database, logger *logrus.Logger) ports.FavoriteRepository {
	return &FavoriteRepository{
		db:     database,
		logger: logger,
	}
}

// Get retrieves the favorite mark for (account, pitch)
func (r *FavoriteRepository) Get(ctx context.Context, accountID uuid.UUID, pitchID int64) (*pitch.Favorite, error) {
	var f pitch.Favorite
	query := `
		SELECT id, account_id, pitch_id, created_at
		FROM favorites
		WHERE account_id = $1 AND pitch_id = $2`

	err := r.db.DB.GetContext(ctx, &f, query, accountID, pitchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("favorite: %w", apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": accountID, "pitch_id": pitchID}).WithError(err).Error("db: failed to get favorite")
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}

	return &f, nil
}

// Create inserts a favorite mark. A duplicate (account_id, pitch_id) pair is
// rejected by the unique constraint and reported as ports.ErrFavoriteExists.
func (r *FavoriteRepository) Create(ctx context.Context, f *pitch.Favorite) error {
	query := `
		INSERT INTO favorites (id, account_id, pitch_id)
		VALUES ($1, $2, $3)`

	_, err := r.db.DB.ExecContext(ctx, query, f.ID, f.AccountID, f.PitchID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ports.ErrFavoriteExists
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": f.AccountID, "pitch_id": f.PitchID}).WithError(err).Error("db: failed to create favorite")
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// Delete removes the favorite mark for (account, pitch)
func (r *FavoriteRepository) Delete(ctx context.Context, accountID uuid.UUID, pitchID int64) error {
	query := `DELETE FROM favorites WHERE account_id = $1 AND pitch_id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, accountID, pitchID)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": accountID, "pitch_id": pitchID}).WithError(err).Error("db: failed to delete favorite")
		}
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("favorite: %w", apperrors.ErrNotFound)
	}

	return nil
}

// ListByAccount lists the account's favorites joined with pitch titles
func (r *FavoriteRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*pitch.FavoriteEntry, error) {
	var entries []*pitch.FavoriteEntry
	query := `
		SELECT f.pitch_id, p.title AS pitch_title
		FROM favorites f
		JOIN pitches p ON p.id = f.pitch_id
		WHERE f.account_id = $1
		ORDER BY f.created_at DESC`

	err := r.db.DB.SelectContext(ctx, &entries, query, accountID)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"account_id": accountID}).WithError(err).Error("db: failed to list favorites")
		}
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return entries, nil
}
