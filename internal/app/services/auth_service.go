package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	jwtauth "github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/rs/zerolog"
)

// Messages sent to clients verbatim
const (
	msgInvalidCredentials = "Please enter valid credentials"
	msgTokenExpired       = "Signature has expired"
	msgTokenInvalid       = "Error decoding signature"
	msgTokenRevoked       = "Token has been revoked"
	msgRefreshInvalid     = "Invalid refresh token"
	msgRefreshExpired     = "Refresh token is expired"
)

// AuthService handles token issuing, verification, rotation and revocation
type AuthService interface {
	TokenAuth(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (*dto.VerifyTokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	RevokeToken(ctx context.Context, actor *models.User, claims *jwtauth.Claims, refreshToken string) error
	CleanupTokens(ctx context.Context) (int64, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    repositories.IUserRepository
	tokenRepo   repositories.ITokenRepository
	jwtService  *jwtauth.JWTService
	revocations revocation.List
	metrics     *metrics.Metrics
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *jwtauth.JWTService,
	revocations revocation.List,
	m *metrics.Metrics,
	now func() time.Time,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		jwtService:  jwtService,
		revocations: revocations,
		metrics:     m,
		now:         now,
		logger:      logger,
	}
}

// TokenAuth exchanges email and password for a token pair
func (s *authServiceImpl) TokenAuth(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		s.metrics.LoginAttempt(false)
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, msgInvalidCredentials)
	}

	if !user.IsActive || !jwtauth.CheckPassword(user.Password, req.Password) {
		s.metrics.LoginAttempt(false)
		s.logger.Info().Int64("userID", user.ID).Msg("Rejected login attempt")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, msgInvalidCredentials)
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt(true)

	return &dto.AuthResponse{
		Token: *token,
		User:  dto.NewUserResponse(user),
	}, nil
}

// VerifyToken decodes a valid access token
func (s *authServiceImpl) VerifyToken(ctx context.Context, token string) (*dto.VerifyTokenResponse, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpiredToken) {
			return nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, msgTokenExpired)
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, msgTokenInvalid)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, msgTokenRevoked)
	}

	return &dto.VerifyTokenResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, msgRefreshInvalid)
	}

	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrTokenNotFound, msgRefreshInvalid)
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	if stored.ExpiredAt(s.now()) {
		if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Failed to revoke expired refresh token")
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, msgRefreshExpired)
	}

	// A revoked token being replayed means it leaked; end every session of the user
	if stored.IsRevoked {
		s.logger.Warn().Int64("userID", stored.UserID).Msg("Revoked refresh token reused")
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, stored.UserID); err != nil {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Failed to revoke user tokens")
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, msgTokenRevoked)
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, msgRefreshInvalid)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, msgRefreshInvalid)
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// RevokeToken revokes the caller's current access token and, when given, one
// of the caller's refresh tokens.
func (s *authServiceImpl) RevokeToken(ctx context.Context, actor *models.User, claims *jwtauth.Claims, refreshToken string) error {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return err
	}

	if refreshToken != "" {
		stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) {
				return apperrors.NewCustomError(apperrors.ErrTokenNotFound, msgRefreshInvalid)
			}
			return fmt.Errorf("failed to get refresh token: %w", err)
		}
		if stored.UserID != actor.ID {
			return apperrors.NewForbiddenError("You can only revoke your own tokens")
		}
	}

	if claims != nil && claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Sub(s.now())
		if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}

	if refreshToken != "" {
		if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	s.logger.Info().Int64("userID", actor.ID).Msg("Tokens revoked")
	return nil
}

// issueTokens creates a token pair and stores the refresh token
func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}

// CleanupTokens deletes expired refresh tokens and revoked ones past retention
func (s *authServiceImpl) CleanupTokens(ctx context.Context) (int64, error) {
	deleted, err := s.tokenRepo.CleanupExpiredTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up refresh tokens: %w", err)
	}
	return deleted, nil
}
