package account

import (
	"time"

	"github.com/google/uuid"
)

// Account mirrors the application's user record. The password hash is never
// serialized; API responses go through Profile.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}

// Profile is the fixed account shape returned by the API.
type Profile struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	IsStaff    bool      `json:"is_staff"`
	IsAdmin    bool      `json:"is_admin"`
	DateJoined time.Time `json:"date_joined"`
}

// Profile builds the public representation of the account.
func (a *Account) Profile() Profile {
	return Profile{
		Username:   a.Username,
		Email:      a.Email,
		IsActive:   a.IsActive,
		IsStaff:    a.IsStaff,
		IsAdmin:    a.IsAdmin,
		DateJoined: a.DateJoined,
	}
}

// VerificationKind discriminates the two emailed-token flows.
type VerificationKind string

const (
	KindPasswordReset VerificationKind = "password_reset"
	KindInfoChange    VerificationKind = "info_change"
)

func (k VerificationKind) String() string {
	return string(k)
}

func (k VerificationKind) IsValid() bool {
	switch k {
	case KindPasswordReset, KindInfoChange:
		return true
	default:
		return false
	}
}

// VerificationToken is a pending one-time token. There is no expiry and no
// used_at marker: consumption deletes the row, so a present row is redeemable.
// Several outstanding tokens per account and kind are allowed; the first one
// redeemed wins.
type VerificationToken struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	AccountID uuid.UUID        `json:"account_id" db:"account_id"`
	Token     string           `json:"token" db:"token"`
	Kind      VerificationKind `json:"kind" db:"kind"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// RequestPasswordResetRequest identifies the account asking for a reset link.
type RequestPasswordResetRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest is the payload redeemed against a password_reset token.
type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// Apply overwrites the account's password hash. The hash is produced by the
// caller so this stays a pure field mapping.
func (r *ChangePasswordRequest) Apply(a *Account, passwordHash string) {
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
}

// ChangeInfoRequest is the payload redeemed against an info_change token.
// Every field is optional; absent fields are left untouched.
type ChangeInfoRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Apply copies each present field onto the account.
func (r *ChangeInfoRequest) Apply(a *Account) {
	if r.Email != nil {
		a.Email = *r.Email
	}
	if r.FirstName != nil {
		a.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		a.LastName = *r.LastName
	}
	a.UpdatedAt = time.Now()
}
