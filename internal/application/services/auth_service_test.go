package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pitchapp/pitch-api/configs"
	impl "github.com/pitchapp/pitch-api/internal/application/services"
	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/core/domain/auth"
	"github.com/pitchapp/pitch-api/internal/core/ports"
)

type tokenRepoMock struct {
	storeFn         func(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	getFn           func(ctx context.Context, tokenHash string) (*ports.RefreshToken, error)
	deleteFn        func(ctx context.Context, tokenHash string) error
	blacklistFn     func(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	isBlacklistedFn func(ctx context.Context, tokenHash string) (bool, error)
}

func (m *tokenRepoMock) StoreRefreshToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, accountID, tokenHash, expiresAt)
	}
	return nil
}
func (m *tokenRepoMock) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tokenHash)
	}
	return nil, errors.New("not found")
}
func (m *tokenRepoMock) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tokenHash)
	}
	return nil
}
func (m *tokenRepoMock) BlacklistToken(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if m.blacklistFn != nil {
		return m.blacklistFn(ctx, accountID, tokenHash, expiresAt)
	}
	return nil
}
func (m *tokenRepoMock) IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	if m.isBlacklistedFn != nil {
		return m.isBlacklistedFn(ctx, tokenHash)
	}
	return false, nil
}
func (m *tokenRepoMock) DeleteExpiredRefreshTokens(ctx context.Context) error     { return nil }
func (m *tokenRepoMock) DeleteExpiredBlacklistedTokens(ctx context.Context) error { return nil }

func testJWTConfig() *configs.JWTConfig {
	return &configs.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func activeAccount(password string) *account.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &account.Account{
		ID:           uuid.New(),
		Username:     "kickabout",
		Email:        "k@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	ar := &accountRepoMock{}
	svc := impl.NewAuthService(ar, &tokenRepoMock{}, testJWTConfig(), logrus.New())

	_, err := svc.Login(context.Background(), &auth.LoginRequest{Username: "ghost", Password: "whatever"})
	require.EqualError(t, err, "account does not exist")
}

func TestLogin_InactiveAccountHiddenAsMissing(t *testing.T) {
	acct := activeAccount("s3cret-pass")
	acct.IsActive = false
	ar := &accountRepoMock{getByUsernameFn: func(ctx context.Context, username string) (*account.Account, error) {
		return acct, nil
	}}
	svc := impl.NewAuthService(ar, &tokenRepoMock{}, testJWTConfig(), logrus.New())

	_, err := svc.Login(context.Background(), &auth.LoginRequest{Username: acct.Username, Password: "s3cret-pass"})
	require.EqualError(t, err, "account does not exist")
}

func TestLogin_WrongPassword(t *testing.T) {
	acct := activeAccount("s3cret-pass")
	ar := &accountRepoMock{getByUsernameFn: func(ctx context.Context, username string) (*account.Account, error) {
		return acct, nil
	}}
	svc := impl.NewAuthService(ar, &tokenRepoMock{}, testJWTConfig(), logrus.New())

	_, err := svc.Login(context.Background(), &auth.LoginRequest{Username: acct.Username, Password: "wrong"})
	require.EqualError(t, err, "incorrect username or password")
}

func TestLogin_IssuesTokenPairAndProfile(t *testing.T) {
	acct := activeAccount("s3cret-pass")
	ar := &accountRepoMock{getByUsernameFn: func(ctx context.Context, username string) (*account.Account, error) {
		return acct, nil
	}}
	stored := false
	tr := &tokenRepoMock{storeFn: func(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
		stored = true
		require.Equal(t, acct.ID, accountID)
		return nil
	}}
	svc := impl.NewAuthService(ar, tr, testJWTConfig(), logrus.New())

	res, err := svc.Login(context.Background(), &auth.LoginRequest{Username: acct.Username, Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, acct.Username, res.User.Username)
	require.True(t, stored)

	claims, err := svc.ValidateToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, acct.ID, claims.AccountID)
	require.Equal(t, acct.Username, claims.Username)
}

func TestValidateToken_Blacklisted(t *testing.T) {
	acct := activeAccount("s3cret-pass")
	ar := &accountRepoMock{getByUsernameFn: func(ctx context.Context, username string) (*account.Account, error) {
		return acct, nil
	}}
	tr := &tokenRepoMock{isBlacklistedFn: func(ctx context.Context, tokenHash string) (bool, error) {
		return true, nil
	}}
	svc := impl.NewAuthService(ar, tr, testJWTConfig(), logrus.New())

	res, err := svc.Login(context.Background(), &auth.LoginRequest{Username: acct.Username, Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), res.AccessToken)
	require.EqualError(t, err, "token is blacklisted")
}

func TestRefreshToken_ExpiredIsRejectedAndDeleted(t *testing.T) {
	deleted := false
	tr := &tokenRepoMock{
		getFn: func(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
			return &ports.RefreshToken{TokenHash: tokenHash, AccountID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}, nil
		},
		deleteFn: func(ctx context.Context, tokenHash string) error {
			deleted = true
			return nil
		},
	}
	svc := impl.NewAuthService(&accountRepoMock{}, tr, testJWTConfig(), logrus.New())

	_, err := svc.RefreshToken(context.Background(), "stale")
	require.EqualError(t, err, "refresh token expired")
	require.True(t, deleted)
}

func TestRefreshToken_RotatesStoredToken(t *testing.T) {
	acct := activeAccount("s3cret-pass")
	svcForHash := impl.NewAuthService(&accountRepoMock{}, &tokenRepoMock{}, testJWTConfig(), logrus.New())
	oldHash := svcForHash.GetTokenHash("old-refresh")

	var deletedHash string
	storedNew := false
	tr := &tokenRepoMock{
		getFn: func(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
			require.Equal(t, oldHash, tokenHash)
			return &ports.RefreshToken{TokenHash: tokenHash, AccountID: acct.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
		storeFn: func(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
			storedNew = true
			return nil
		},
		deleteFn: func(ctx context.Context, tokenHash string) error {
			deletedHash = tokenHash
			return nil
		},
	}
	ar := &accountRepoMock{getByIDFn: func(ctx context.Context, id uuid.UUID) (*account.Account, error) { return acct, nil }}
	svc := impl.NewAuthService(ar, tr, testJWTConfig(), logrus.New())

	tokens, err := svc.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.True(t, storedNew)
	require.Equal(t, oldHash, deletedHash)
}

func TestLogout_BlacklistsTokenHash(t *testing.T) {
	accountID := uuid.New()
	var gotHash string
	tr := &tokenRepoMock{blacklistFn: func(ctx context.Context, aID uuid.UUID, tokenHash string, expiresAt time.Time) error {
		require.Equal(t, accountID, aID)
		gotHash = tokenHash
		return nil
	}}
	svc := impl.NewAuthService(&accountRepoMock{}, tr, testJWTConfig(), logrus.New())

	require.NoError(t, svc.Logout(context.Background(), accountID, "the-access-token"))
	require.Equal(t, svc.GetTokenHash("the-access-token"), gotHash)
}

var _ ports.TokenRepository = (*tokenRepoMock)(nil)
