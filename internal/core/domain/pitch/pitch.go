package pitch

import (
	"time"

	"github.com/google/uuid"
)

// Pitch is a rentable playing field listing.
type Pitch struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address" db:"address"`
	Surface     string    `json:"surface" db:"surface"`
	PricePerHour int64    `json:"price_per_hour" db:"price_per_hour"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Favorite marks a pitch as favorited by an account. Presence of the row is
// the whole state; toggling twice deletes it again.
type Favorite struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	PitchID   int64     `json:"pitch_id" db:"pitch_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FavoriteEntry is the favorites-list shape: the pitch reference plus its
// title resolved for display.
type FavoriteEntry struct {
	PitchID    int64  `json:"pitch_id" db:"pitch_id"`
	PitchTitle string `json:"pitch_title" db:"pitch_title"`
}

// ToggleResult reports the state after a favorite toggle.
type ToggleResult struct {
	Liked      bool
	PitchTitle string
}
