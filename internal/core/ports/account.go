package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/pitchapp/pitch-api/internal/core/domain/account"
)

// AccountRepository defines the read side of account storage. All account
// writes go through VerificationRepository.Consume so the token deletion and
// the account update share one transaction.
type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	// GetActiveByUsernameEmail returns the active account matching both
	// username and email, as required by the password-reset request flow.
	GetActiveByUsernameEmail(ctx context.Context, username, email string) (*account.Account, error)
}

// VerificationRepository is the durable store of outstanding one-time tokens.
type VerificationRepository interface {
	Create(ctx context.Context, t *account.VerificationToken) error
	// GetByToken looks a pending token up by its opaque value and kind.
	GetByToken(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error)
	// Consume applies the already-mutated account and deletes the token row
	// in one transaction. If the row was deleted by a concurrent redeemer the
	// whole transaction aborts with apperrors.ErrNotFound; a failure applying
	// the account surfaces as apperrors.ErrPersistence. Either both writes
	// happen or neither does.
	Consume(ctx context.Context, tokenID uuid.UUID, a *account.Account) error
}

// AccountService drives the two token-gated flows: issue a token and email
// its redemption link, then redeem it exactly once.
type AccountService interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// RequestPasswordReset issues a password_reset token for the active
	// account matching username+email. The token row is persisted only after
	// dispatch succeeded.
	RequestPasswordReset(ctx context.Context, req *account.RequestPasswordResetRequest) error
	// RedeemPasswordReset consumes a password_reset token and overwrites the
	// account's password hash.
	RedeemPasswordReset(ctx context.Context, token string, req *account.ChangePasswordRequest) (*account.Account, error)

	// RequestInfoChange issues an info_change token for the given account.
	// The token row is persisted even when dispatch fails.
	RequestInfoChange(ctx context.Context, accountID uuid.UUID) error
	// RedeemInfoChange consumes an info_change token and applies the partial
	// profile update.
	RedeemInfoChange(ctx context.Context, token string, req *account.ChangeInfoRequest) (*account.Account, error)
}

// EmailService defines the interface for outbound link emails.
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, email, token, username string) error
	SendInfoChangeEmail(ctx context.Context, email, token, username string) error
}
