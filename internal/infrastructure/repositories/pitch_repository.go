package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/domain/pitch"
	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/infrastructure/db"
)

// PitchRepository implements read access to pitch listings.
type PitchRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewPitchRepository creates a new pitch repository
func NewPitchRepository(database *db.Database, logger *logrus.Logger) ports.PitchRepository {
	return &PitchRepository{
		db:     database,
		logger: logger,
	}
}

// GetByID retrieves a pitch by ID
func (r *PitchRepository) GetByID(ctx context.Context, id int64) (*pitch.Pitch, error) {
	var p pitch.Pitch
	query := `
		SELECT id, title, address, surface, price_per_hour, description, created_at
		FROM pitches
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"pitch_id": id}).Debug("db: pitch not found")
			}
			return nil, fmt.Errorf("pitch with ID %d: %w", id, apperrors.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"pitch_id": id}).WithError(err).Error("db: failed to get pitch")
		}
		return nil, fmt.Errorf("failed to get pitch: %w", err)
	}

	return &p, nil
}

// List retrieves pitches with pagination
func (r *PitchRepository) List(ctx context.Context, limit, offset int) ([]*pitch.Pitch, error) {
	var pitches []*pitch.Pitch
	query := `
		SELECT id, title, address, surface, price_per_hour, description, created_at
		FROM pitches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	err := r.db.DB.SelectContext(ctx, &pitches, query, limit, offset)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to list pitches")
		}
		return nil, fmt.Errorf("failed to list pitches: %w", err)
	}

	return pitches, nil
}

// Count returns the total number of pitches
func (r *PitchRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM pitches`

	err := r.db.DB.GetContext(ctx, &count, query)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to count pitches")
		}
		return 0, fmt.Errorf("failed to count pitches: %w", err)
	}

	return count, nil
}
