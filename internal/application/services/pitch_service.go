package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/domain/pitch"
	"github.com/pitchapp/pitch-api/internal/core/ports"
)

// PitchService implements pitch listing views and the favorites toggle.
type PitchService struct {
	pitchRepo    ports.PitchRepository
	favoriteRepo ports.FavoriteRepository
	cache        ports.Cache
	cacheTTL     time.Duration
	logger       *logrus.Logger
}

func NewPitchService(pitchRepo ports.PitchRepository, favoriteRepo ports.FavoriteRepository, cache ports.Cache, cacheTTL time.Duration, logger *logrus.Logger) ports.PitchService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &PitchService{
		pitchRepo:    pitchRepo,
		favoriteRepo: favoriteRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func pitchCacheKey(id int64) string {
	return fmt.Sprintf("pitch:%d", id)
}

// GetPitch reads through the cache; cache errors fall back to the repository.
func (s *PitchService) GetPitch(ctx context.Context, id int64) (*pitch.Pitch, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, pitchCacheKey(id)); err == nil && ok {
			var p pitch.Pitch
			if err := json.Unmarshal(raw, &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.pitchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, pitchCacheKey(p.ID), raw, s.cacheTTL); err != nil {
				s.logger.WithFields(logrus.Fields{"pitch_id": p.ID}).WithError(err).Debug("failed to cache pitch")
			}
		}
	}

	return p, nil
}

func (s *PitchService) ListPitches(ctx context.Context, limit, offset int) ([]*pitch.Pitch, int, error) {
	pitches, err := s.pitchRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.pitchRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return pitches, count, nil
}

func (s *PitchService) ListFavorites(ctx context.Context, accountID uuid.UUID) ([]*pitch.FavoriteEntry, error) {
	return s.favoriteRepo.ListByAccount(ctx, accountID)
}

// ToggleFavorite flips the favorite mark for (account, pitch). The existence
// check and the write are not one atomic step; a concurrent double-toggle is
// resolved by the unique (account_id, pitch_id) constraint, and the loser of
// the insert race is answered as liked rather than surfacing the conflict.
func (s *PitchService) ToggleFavorite(ctx context.Context, accountID uuid.UUID, pitchID int64) (*pitch.ToggleResult, error) {
	p, err := s.GetPitch(ctx, pitchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("pitch not found: %w", err)
		}
		return nil, fmt.Errorf("failed to load pitch: %w", err)
	}

	existing, err := s.favoriteRepo.Get(ctx, accountID, pitchID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	if existing != nil {
		if err := s.favoriteRepo.Delete(ctx, accountID, pitchID); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return &pitch.ToggleResult{Liked: false, PitchTitle: p.Title}, nil
	}

	fav := &pitch.Favorite{
		ID:        uuid.New(),
		AccountID: accountID,
		PitchID:   pitchID,
	}
	if err := s.favoriteRepo.Create(ctx, fav); err != nil {
		if errors.Is(err, ports.ErrFavoriteExists) {
			return &pitch.ToggleResult{Liked: true, PitchTitle: p.Title}, nil
		}
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}

	return &pitch.ToggleResult{Liked: true, PitchTitle: p.Title}, nil
}
