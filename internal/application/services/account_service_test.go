package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	impl "github.com/pitchapp/pitch-api/internal/application/services"
	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/ports"
)

type accountRepoMock struct {
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	getByUsernameFn      func(ctx context.Context, username string) (*account.Account, error)
	getActiveByUserEmFn  func(ctx context.Context, username, email string) (*account.Account, error)
}

func (m *accountRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("account: %w", apperrors.ErrNotFound)
}
func (m *accountRepoMock) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, fmt.Errorf("account: %w", apperrors.ErrNotFound)
}
func (m *accountRepoMock) GetActiveByUsernameEmail(ctx context.Context, username, email string) (*account.Account, error) {
	if m.getActiveByUserEmFn != nil {
		return m.getActiveByUserEmFn(ctx, username, email)
	}
	return nil, fmt.Errorf("account: %w", apperrors.ErrNotFound)
}

type verificationRepoMock struct {
	createFn     func(ctx context.Context, t *account.VerificationToken) error
	getByTokenFn func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error)
	consumeFn    func(ctx context.Context, tokenID uuid.UUID, a *account.Account) error
}

func (m *verificationRepoMock) Create(ctx context.Context, t *account.VerificationToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}
func (m *verificationRepoMock) GetByToken(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token, kind)
	}
	return nil, fmt.Errorf("verification token: %w", apperrors.ErrNotFound)
}
func (m *verificationRepoMock) Consume(ctx context.Context, tokenID uuid.UUID, a *account.Account) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, tokenID, a)
	}
	return nil
}

type emailServiceMock struct {
	sendResetFn func(ctx context.Context, email, token, username string) error
	sendInfoFn  func(ctx context.Context, email, token, username string) error
}

func (m *emailServiceMock) SendPasswordResetEmail(ctx context.Context, email, token, username string) error {
	if m.sendResetFn != nil {
		return m.sendResetFn(ctx, email, token, username)
	}
	return nil
}
func (m *emailServiceMock) SendInfoChangeEmail(ctx context.Context, email, token, username string) error {
	if m.sendInfoFn != nil {
		return m.sendInfoFn(ctx, email, token, username)
	}
	return nil
}

func testAccount() *account.Account {
	return &account.Account{
		ID:       uuid.New(),
		Username: "kickabout",
		Email:    "k@example.com",
		IsActive: true,
	}
}

func TestRequestPasswordReset_UnknownAccount(t *testing.T) {
	ar := &accountRepoMock{}
	vr := &verificationRepoMock{}
	svc := impl.NewAccountService(ar, vr, &emailServiceMock{}, logrus.New())

	err := svc.RequestPasswordReset(context.Background(), &account.RequestPasswordResetRequest{Username: "nope", Email: "n@x.com"})
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRequestPasswordReset_DispatchFailureLeavesNoToken(t *testing.T) {
	acct := testAccount()
	ar := &accountRepoMock{getActiveByUserEmFn: func(ctx context.Context, username, email string) (*account.Account, error) {
		return acct, nil
	}}
	created := false
	vr := &verificationRepoMock{createFn: func(ctx context.Context, tok *account.VerificationToken) error {
		created = true
		return nil
	}}
	es := &emailServiceMock{sendResetFn: func(ctx context.Context, email, token, username string) error {
		return fmt.Errorf("%w: provider status 500", apperrors.ErrMailDispatch)
	}}
	svc := impl.NewAccountService(ar, vr, es, logrus.New())

	err := svc.RequestPasswordReset(context.Background(), &account.RequestPasswordResetRequest{Username: acct.Username, Email: acct.Email})
	require.ErrorIs(t, err, apperrors.ErrMailDispatch)
	require.False(t, created, "token must not be persisted when dispatch fails")
}

func TestRequestPasswordReset_PersistsAfterDispatch(t *testing.T) {
	acct := testAccount()
	ar := &accountRepoMock{getActiveByUserEmFn: func(ctx context.Context, username, email string) (*account.Account, error) {
		return acct, nil
	}}
	var issued *account.VerificationToken
	vr := &verificationRepoMock{createFn: func(ctx context.Context, tok *account.VerificationToken) error {
		issued = tok
		return nil
	}}
	sent := false
	es := &emailServiceMock{sendResetFn: func(ctx context.Context, email, token, username string) error {
		require.False(t, sent)
		require.Nil(t, issued, "dispatch must happen before the token row exists")
		sent = true
		return nil
	}}
	svc := impl.NewAccountService(ar, vr, es, logrus.New())

	err := svc.RequestPasswordReset(context.Background(), &account.RequestPasswordResetRequest{Username: acct.Username, Email: acct.Email})
	require.NoError(t, err)
	require.True(t, sent)
	require.NotNil(t, issued)
	require.Equal(t, account.KindPasswordReset, issued.Kind)
	require.Equal(t, acct.ID, issued.AccountID)
	require.NotEmpty(t, issued.Token)
}

func TestRequestInfoChange_PersistsDespiteDispatchFailure(t *testing.T) {
	acct := testAccount()
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) {
		return acct, nil
	}}
	created := false
	vr := &verificationRepoMock{createFn: func(ctx context.Context, tok *account.VerificationToken) error {
		created = true
		require.Equal(t, account.KindInfoChange, tok.Kind)
		return nil
	}}
	es := &emailServiceMock{sendInfoFn: func(ctx context.Context, email, token, username string) error {
		return fmt.Errorf("%w: timeout", apperrors.ErrMailDispatch)
	}}
	svc := impl.NewAccountService(ar, vr, es, logrus.New())

	err := svc.RequestInfoChange(context.Background(), acct.ID)
	require.ErrorIs(t, err, apperrors.ErrMailDispatch)
	require.True(t, created, "token row survives the dispatch failure")
}

func TestRedeemPasswordReset_UnknownToken(t *testing.T) {
	svc := impl.NewAccountService(&accountRepoMock{}, &verificationRepoMock{}, &emailServiceMock{}, logrus.New())

	_, err := svc.RedeemPasswordReset(context.Background(), "no-such-token", &account.ChangePasswordRequest{Password: "Str0ngPassw0rd!", PasswordConfirm: "Str0ngPassw0rd!"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedeemPasswordReset_MismatchLeavesTokenRedeemable(t *testing.T) {
	acct := testAccount()
	pending := &account.VerificationToken{ID: uuid.New(), AccountID: acct.ID, Token: "tok-1", Kind: account.KindPasswordReset}
	consumed := false
	vr := &verificationRepoMock{
		getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
			return pending, nil
		},
		consumeFn: func(ctx context.Context, tokenID uuid.UUID, a *account.Account) error {
			consumed = true
			return nil
		},
	}
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil }}
	svc := impl.NewAccountService(ar, vr, &emailServiceMock{}, logrus.New())

	_, err := svc.RedeemPasswordReset(context.Background(), "tok-1", &account.ChangePasswordRequest{Password: "Str0ngPassw0rd!", PasswordConfirm: "different"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.False(t, consumed, "validation failure must not consume the token")
}

func TestRedeemPasswordReset_WeakPasswordRejected(t *testing.T) {
	acct := testAccount()
	pending := &account.VerificationToken{ID: uuid.New(), AccountID: acct.ID, Token: "tok-1", Kind: account.KindPasswordReset}
	vr := &verificationRepoMock{getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
		return pending, nil
	}}
	svc := impl.NewAccountService(&accountRepoMock{}, vr, &emailServiceMock{}, logrus.New())

	_, err := svc.RedeemPasswordReset(context.Background(), "tok-1", &account.ChangePasswordRequest{Password: "aaaaaaaa", PasswordConfirm: "aaaaaaaa"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRedeemPasswordReset_Success(t *testing.T) {
	acct := testAccount()
	acct.PasswordHash = "old-hash"
	pending := &account.VerificationToken{ID: uuid.New(), AccountID: acct.ID, Token: "tok-1", Kind: account.KindPasswordReset}
	var consumedID uuid.UUID
	var consumedAcct *account.Account
	vr := &verificationRepoMock{
		getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
			require.Equal(t, "tok-1", token)
			require.Equal(t, account.KindPasswordReset, kind)
			return pending, nil
		},
		consumeFn: func(ctx context.Context, tokenID uuid.UUID, a *account.Account) error {
			consumedID = tokenID
			consumedAcct = a
			return nil
		},
	}
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil }}
	svc := impl.NewAccountService(ar, vr, &emailServiceMock{}, logrus.New())

	updated, err := svc.RedeemPasswordReset(context.Background(), "tok-1", &account.ChangePasswordRequest{Password: "Str0ngPassw0rd!", PasswordConfirm: "Str0ngPassw0rd!"})
	require.NoError(t, err)
	require.Equal(t, pending.ID, consumedID)
	require.NotNil(t, consumedAcct)
	require.NotEqual(t, "old-hash", updated.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("Str0ngPassw0rd!")))
}

func TestRedeemPasswordReset_DoubleRedeem(t *testing.T) {
	acct := testAccount()
	pending := &account.VerificationToken{ID: uuid.New(), AccountID: acct.ID, Token: "tok-1", Kind: account.KindPasswordReset}
	vr := &verificationRepoMock{
		getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
			return pending, nil
		},
		consumeFn: func(ctx context.Context, tokenID uuid.UUID, a *account.Account) error {
			// Concurrent redeemer already deleted the row
			return fmt.Errorf("verification token already consumed: %w", apperrors.ErrNotFound)
		},
	}
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil }}
	svc := impl.NewAccountService(ar, vr, &emailServiceMock{}, logrus.New())

	_, err := svc.RedeemPasswordReset(context.Background(), "tok-1", &account.ChangePasswordRequest{Password: "Str0ngPassw0rd!", PasswordConfirm: "Str0ngPassw0rd!"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedeemInfoChange_PartialUpdate(t *testing.T) {
	acct := testAccount()
	acct.FirstName = "Kofi"
	acct.LastName = "Mensah"
	pending := &account.VerificationToken{ID: uuid.New(), AccountID: acct.ID, Token: "tok-2", Kind: account.KindInfoChange}
	vr := &verificationRepoMock{
		getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
			require.Equal(t, account.KindInfoChange, kind)
			return pending, nil
		},
	}
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil }}
	svc := impl.NewAccountService(ar, vr, &emailServiceMock{}, logrus.New())

	newEmail := "a@b.com"
	updated, err := svc.RedeemInfoChange(context.Background(), "tok-2", &account.ChangeInfoRequest{Email: &newEmail})
	require.NoError(t, err)
	require.Equal(t, "a@b.com", updated.Email)
	require.Equal(t, "Kofi", updated.FirstName)
	require.Equal(t, "Mensah", updated.LastName)
}

func TestRedeemInfoChange_UnknownToken(t *testing.T) {
	svc := impl.NewAccountService(&accountRepoMock{}, &verificationRepoMock{}, &emailServiceMock{}, logrus.New())

	name := "X"
	_, err := svc.RedeemInfoChange(context.Background(), "missing", &account.ChangeInfoRequest{FirstName: &name})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRequestPasswordReset_RepositoryFailure(t *testing.T) {
	ar := &accountRepoMock{getActiveByUserEmFn: func(ctx context.Context, username, email string) (*account.Account, error) {
		return nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	}}
	svc := impl.NewAccountService(ar, &verificationRepoMock{}, &emailServiceMock{}, logrus.New())

	err := svc.RequestPasswordReset(context.Background(), &account.RequestPasswordResetRequest{Username: "kickabout", Email: "k@example.com"})
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrNotFound, "infrastructure failures must not read as a missing account")
}

func TestRedeemPasswordReset_RepositoryFailure(t *testing.T) {
	vr := &verificationRepoMock{getByTokenFn: func(ctx context.Context, token string, kind account.VerificationKind) (*account.VerificationToken, error) {
		return nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	}}
	svc := impl.NewAccountService(&accountRepoMock{}, vr, &emailServiceMock{}, logrus.New())

	_, err := svc.RedeemPasswordReset(context.Background(), "tok-1", &account.ChangePasswordRequest{Password: "Str0ngPassw0rd!", PasswordConfirm: "Str0ngPassw0rd!"})
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrNotFound, "infrastructure failures must not read as a consumed token")
}

var _ ports.AccountRepository = (*accountRepoMock)(nil)
var _ ports.VerificationRepository = (*verificationRepoMock)(nil)
var _ ports.EmailService = (*emailServiceMock)(nil)
