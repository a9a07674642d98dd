package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/ports"
	"github.com/pitchapp/pitch-api/internal/utils"
)

// AccountService implements the token-gated account flows: issuing emailed
// one-time tokens and redeeming them exactly once.
type AccountService struct {
	repo         ports.AccountRepository
	verifyRepo   ports.VerificationRepository
	emailService ports.EmailService
	logger       *logrus.Logger
}

func NewAccountService(repo ports.AccountRepository, verifyRepo ports.VerificationRepository, emailService ports.EmailService, logger *logrus.Logger) ports.AccountService {
	return &AccountService{
		repo:         repo,
		verifyRepo:   verifyRepo,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// newVerificationToken builds a pending token record with a fresh random
// value. Uniqueness is not re-checked against existing rows; a 128-bit random
// value makes collisions negligible.
func newVerificationToken(accountID uuid.UUID, kind account.VerificationKind) *account.VerificationToken {
	return &account.VerificationToken{
		ID:        uuid.New(),
		AccountID: accountID,
		Token:     uuid.NewString(),
		Kind:      kind,
	}
}

// RequestPasswordReset issues a password_reset token. The token row is
// persisted only after the email went out: a dispatch failure leaves no
// pending token behind.
func (s *AccountService) RequestPasswordReset(ctx context.Context, req *account.RequestPasswordResetRequest) error {
	acct, err := s.repo.GetActiveByUsernameEmail(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("username or email is incorrect: %w", err)
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token := newVerificationToken(acct.ID, account.KindPasswordReset)

	if err := s.emailService.SendPasswordResetEmail(ctx, acct.Email, token.Token, acct.Username); err != nil {
		s.logger.WithFields(logrus.Fields{"account_id": acct.ID}).WithError(err).Warn("password reset email dispatch failed")
		return err
	}

	if err := s.verifyRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to save password reset token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "kind": token.Kind}).Info("verification token issued")
	return nil
}

// RequestInfoChange issues an info_change token. Unlike the password-reset
// flow the token row is persisted even when dispatch fails; the caller still
// sees the dispatch error. Kept intentionally, see DESIGN.md.
func (s *AccountService) RequestInfoChange(ctx context.Context, accountID uuid.UUID) error {
	acct, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("account not found: %w", err)
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	token := newVerificationToken(acct.ID, account.KindInfoChange)

	if err := s.verifyRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to save info change token: %w", err)
	}

	if err := s.emailService.SendInfoChangeEmail(ctx, acct.Email, token.Token, acct.Username); err != nil {
		s.logger.WithFields(logrus.Fields{"account_id": acct.ID}).WithError(err).Warn("info change token persisted despite mail failure")
		return err
	}

	s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "kind": token.Kind}).Info("verification token issued")
	return nil
}

// RedeemPasswordReset consumes a password_reset token. Validation failures
// leave the token redeemable; the account update and the token deletion
// happen in one transaction.
func (s *AccountService) RedeemPasswordReset(ctx context.Context, tokenStr string, req *account.ChangePasswordRequest) (*account.Account, error) {
	pending, err := s.verifyRepo.GetByToken(ctx, tokenStr, account.KindPasswordReset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("link is already in use or does not exist: %w", err)
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if req.Password != req.PasswordConfirm {
		return nil, fmt.Errorf("the two password fields didn't match: %w", apperrors.ErrValidation)
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	acct, err := s.repo.GetByID(ctx, pending.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("account not found: %w", err)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	req.Apply(acct, string(hash))

	if err := s.verifyRepo.Consume(ctx, pending.ID, acct); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "kind": pending.Kind}).Info("verification token redeemed")
	return acct, nil
}

// RedeemInfoChange consumes an info_change token and applies the partial
// profile update. Absent fields stay untouched.
func (s *AccountService) RedeemInfoChange(ctx context.Context, tokenStr string, req *account.ChangeInfoRequest) (*account.Account, error) {
	pending, err := s.verifyRepo.GetByToken(ctx, tokenStr, account.KindInfoChange)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("link is already in use or does not exist: %w", err)
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	acct, err := s.repo.GetByID(ctx, pending.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("account not found: %w", err)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	req.Apply(acct)

	if err := s.verifyRepo.Consume(ctx, pending.ID, acct); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"account_id": acct.ID, "kind": pending.Kind}).Info("verification token redeemed")
	return acct, nil
}
