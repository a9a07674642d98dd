package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pitchapp/pitch-api/internal/core/domain/pitch"
)

// ErrFavoriteExists is returned by FavoriteRepository.Create when the unique
// (account_id, pitch_id) constraint rejects a duplicate row. It never leaves
// the service layer: a concurrent double-toggle losing the insert race is
// answered as liked, not as an error.
var ErrFavoriteExists = errors.New("favorite already exists")

// PitchRepository defines read access to pitch listings.
type PitchRepository interface {
	GetByID(ctx context.Context, id int64) (*pitch.Pitch, error)
	List(ctx context.Context, limit, offset int) ([]*pitch.Pitch, error)
	Count(ctx context.Context) (int, error)
}

// FavoriteRepository stores favorite marks, unique per (account, pitch).
type FavoriteRepository interface {
	Get(ctx context.Context, accountID uuid.UUID, pitchID int64) (*pitch.Favorite, error)
	Create(ctx context.Context, f *pitch.Favorite) error
	Delete(ctx context.Context, accountID uuid.UUID, pitchID int64) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*pitch.FavoriteEntry, error)
}

// PitchService defines pitch listing views and the favorites toggle.
type PitchService interface {
	GetPitch(ctx context.Context, id int64) (*pitch.Pitch, error)
	ListPitches(ctx context.Context, limit, offset int) ([]*pitch.Pitch, int, error)
	ListFavorites(ctx context.Context, accountID uuid.UUID) ([]*pitch.FavoriteEntry, error)
	ToggleFavorite(ctx context.Context, accountID uuid.UUID, pitchID int64) (*pitch.ToggleResult, error)
}
