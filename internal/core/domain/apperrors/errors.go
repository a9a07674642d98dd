// Package apperrors defines the error taxonomy shared by services and the
// HTTP layer. Services wrap these sentinels with context via fmt.Errorf and
// %w; handlers classify with errors.Is and map to status codes.
package apperrors

import "errors"

var (
	// ErrNotFound covers unknown accounts, tokens and pitches.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed or mismatched payloads. A redemption
	// failing validation leaves its token untouched and redeemable.
	ErrValidation = errors.New("validation failed")
	// ErrMailDispatch covers outbound email transport failures. Never retried.
	ErrMailDispatch = errors.New("mail dispatch failed")
	// ErrPersistence covers transaction-level failures applying a mutation.
	ErrPersistence = errors.New("persistence failure")
)
