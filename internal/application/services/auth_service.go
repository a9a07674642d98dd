package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/pitchapp/pitch-api/configs"
	"github.com/pitchapp/pitch-api/internal/core/domain/account"
	"github.com/pitchapp/pitch-api/internal/core/domain/auth"
	"github.com/pitchapp/pitch-api/internal/core/ports"
)

type AuthService struct {
	accountRepo ports.AccountRepository
	tokenRepo   ports.TokenRepository
	jwtConfig   *configs.JWTConfig
	logger      *logrus.Logger
}

func NewAuthService(accountRepo ports.AccountRepository, tokenRepo ports.TokenRepository, jwtConfig *configs.JWTConfig, logger *logrus.Logger) ports.AuthService {
	service := &AuthService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		jwtConfig:   jwtConfig,
		logger:      logger,
	}

	if tokenRepo != nil {
		go service.startPeriodicTokenCleanup()
	}

	return service
}

func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, error) {
	acct, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("account does not exist")
	}

	if !acct.IsActive {
		return nil, fmt.Errorf("account does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("incorrect username or password")
	}

	tokens, err := s.generateTokens(ctx, acct)
	if err != nil {
		return nil, err
	}

	return &auth.LoginResult{User: acct.Profile(), AuthTokens: *tokens}, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.AuthTokens, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, s.GetTokenHash(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	if time.Now().After(stored.ExpiresAt) {
		if err := s.tokenRepo.DeleteRefreshToken(ctx, stored.TokenHash); err != nil {
			s.logger.WithError(err).Warn("failed to delete expired refresh token")
		}
		return nil, fmt.Errorf("refresh token expired")
	}

	acct, err := s.accountRepo.GetByID(ctx, stored.AccountID)
	if err != nil {
		return nil, fmt.Errorf("account not found")
	}

	tokens, err := s.generateTokens(ctx, acct)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, stored.TokenHash); err != nil {
		s.logger.WithError(err).Warn("failed to delete used refresh token")
	}
	return tokens, nil
}

func (s *AuthService) Logout(ctx context.Context, accountID uuid.UUID, token string) error {
	expiresAt := time.Now().Add(s.jwtConfig.AccessTokenTTL)
	return s.tokenRepo.BlacklistToken(ctx, accountID, s.GetTokenHash(token), expiresAt)
}

func (s *AuthService) GetTokenHash(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (s *AuthService) generateTokens(ctx context.Context, acct *account.Account) (*auth.AuthTokens, error) {
	now := time.Now()

	claims := &auth.Claims{
		AccountID: acct.ID,
		Username:  acct.Username,
		IsStaff:   acct.IsStaff,
		IsAdmin:   acct.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   acct.ID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.RefreshTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.tokenRepo.StoreRefreshToken(ctx, acct.ID, s.GetTokenHash(refreshTokenString), now.Add(s.jwtConfig.RefreshTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &auth.AuthTokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	isBlacklisted, err := s.tokenRepo.IsTokenBlacklisted(ctx, s.GetTokenHash(tokenString))
	if err != nil {
		return nil, err
	}

	if isBlacklisted {
		return nil, fmt.Errorf("token is blacklisted")
	}

	return claims, nil
}

// startPeriodicTokenCleanup runs background cleanup loops for expired
// refresh and blacklisted tokens.
func (s *AuthService) startPeriodicTokenCleanup() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		if err := s.tokenRepo.DeleteExpiredRefreshTokens(ctx); err != nil {
			s.logger.WithError(err).Error("failed to cleanup expired refresh tokens")
		}

		if err := s.tokenRepo.DeleteExpiredBlacklistedTokens(ctx); err != nil {
			s.logger.WithError(err).Error("failed to cleanup expired blacklisted tokens")
		}

		cancel()
	}
}
