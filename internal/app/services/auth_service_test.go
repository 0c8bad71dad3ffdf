package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/rs/zerolog"
)

func login(t *testing.T, h *harness, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := h.svc.Auth.TokenAuth(h.ctx, &dto.LoginRequest{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("TokenAuth(%s) error = %v", email, err)
	}
	return resp
}

func TestTokenAuthCredentials(t *testing.T) {
	h := newHarness(t)
	h.user(t, "parent@example.com", models.RoleParent)

	_, err := h.svc.Auth.TokenAuth(h.ctx, &dto.LoginRequest{Email: "parent@example.com", Password: "wrong-password"})
	assertErr(t, err, apperrors.ErrInvalidCredentials)
	if msg := apperrors.Message(err, ""); msg != "Please enter valid credentials" {
		t.Errorf("message = %q", msg)
	}
	_, err = h.svc.Auth.TokenAuth(h.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assertErr(t, err, apperrors.ErrInvalidCredentials)

	resp := login(t, h, " Parent@Example.com ")
	if resp.Token.TokenType != "Bearer" || resp.Token.ExpiresIn != 900 || resp.Token.RefreshToken == "" {
		t.Errorf("token = %+v", resp.Token)
	}
}

func TestVerifyToken(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	resp := login(t, h, "parent@example.com")

	claims, err := h.svc.Auth.VerifyToken(h.ctx, resp.Token.AccessToken)
	assertErr(t, err, nil)
	if claims.UserID != parent.ID || claims.Role != "PARENT" {
		t.Errorf("claims = %+v", claims)
	}

	_, err = h.svc.Auth.VerifyToken(h.ctx, "garbage")
	assertErr(t, err, apperrors.ErrTokenInvalid)

	h.clock.Advance(16 * time.Minute)
	_, err = h.svc.Auth.VerifyToken(h.ctx, resp.Token.AccessToken)
	assertErr(t, err, apperrors.ErrTokenExpired)
	if msg := apperrors.Message(err, ""); msg != "Signature has expired" {
		t.Errorf("message = %q", msg)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	h := newHarness(t)
	h.user(t, "parent@example.com", models.RoleParent)
	first := login(t, h, "parent@example.com")

	h.clock.Advance(time.Minute)
	second, err := h.svc.Auth.RefreshToken(h.ctx, first.Token.RefreshToken)
	assertErr(t, err, nil)
	if second.RefreshToken == first.Token.RefreshToken || second.AccessToken == "" {
		t.Fatalf("refresh did not rotate: %+v", second)
	}

	// replaying the rotated token ends every session of the user
	_, err = h.svc.Auth.RefreshToken(h.ctx, first.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenRevoked)
	_, err = h.svc.Auth.RefreshToken(h.ctx, second.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenRevoked)

	_, err = h.svc.Auth.RefreshToken(h.ctx, "unknown")
	assertErr(t, err, apperrors.ErrTokenNotFound)
	_, err = h.svc.Auth.RefreshToken(h.ctx, "")
	assertErr(t, err, apperrors.ErrTokenInvalid)
}

func TestRefreshTokenExpired(t *testing.T) {
	h := newHarness(t)
	h.user(t, "parent@example.com", models.RoleParent)
	resp := login(t, h, "parent@example.com")

	h.clock.Advance(8 * 24 * time.Hour)
	_, err := h.svc.Auth.RefreshToken(h.ctx, resp.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenExpired)
}

type failingRevokeRepo struct {
	repositories.ITokenRepository
}

func (failingRevokeRepo) RevokeToken(context.Context, string) error {
	return errors.New("connection reset")
}

func TestRefreshTokenExpiredLogsRevokeFailure(t *testing.T) {
	h := newHarness(t)
	h.user(t, "parent@example.com", models.RoleParent)
	resp := login(t, h, "parent@example.com")

	var logs bytes.Buffer
	svc := NewAuthService(h.repos.UserRepository, failingRevokeRepo{h.repos.TokenRepository}, h.jwt,
		revocation.NewMemoryList(), nil, h.clock.Now, zerolog.New(&logs))

	h.clock.Advance(8 * 24 * time.Hour)
	_, err := svc.RefreshToken(h.ctx, resp.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenExpired)
	if !strings.Contains(logs.String(), "Failed to revoke expired refresh token") {
		t.Errorf("revoke failure not logged: %s", logs.String())
	}
}

func TestRevokeToken(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	h.user(t, "other@example.com", models.RoleParent)
	mine := login(t, h, "parent@example.com")
	theirs := login(t, h, "other@example.com")

	claims, err := h.jwt.ValidateAndExtractClaims(mine.Token.AccessToken)
	assertErr(t, err, nil)

	err = h.svc.Auth.RevokeToken(h.ctx, parent, claims, theirs.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrPermissionDenied)
	_, err = h.svc.Auth.VerifyToken(h.ctx, mine.Token.AccessToken)
	assertErr(t, err, nil)

	err = h.svc.Auth.RevokeToken(h.ctx, parent, claims, mine.Token.RefreshToken)
	assertErr(t, err, nil)

	_, err = h.svc.Auth.VerifyToken(h.ctx, mine.Token.AccessToken)
	assertErr(t, err, apperrors.ErrTokenRevoked)
	_, err = h.svc.Auth.VerifyToken(h.ctx, theirs.Token.AccessToken)
	assertErr(t, err, nil)

	_, err = h.svc.Auth.RefreshToken(h.ctx, mine.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenRevoked)

	assertErr(t, h.svc.Auth.RevokeToken(h.ctx, nil, nil, ""), apperrors.ErrNotAuthenticated)
}

func TestCleanupTokensRemovesExpiredRefreshTokens(t *testing.T) {
	h := newHarness(t)
	h.user(t, "parent@example.com", models.RoleParent)
	stale := login(t, h, "parent@example.com")

	h.clock.Advance(8 * 24 * time.Hour)
	fresh := login(t, h, "parent@example.com")

	deleted, err := h.svc.Auth.CleanupTokens(h.ctx)
	assertErr(t, err, nil)
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	_, err = h.svc.Auth.RefreshToken(h.ctx, stale.Token.RefreshToken)
	assertErr(t, err, apperrors.ErrTokenNotFound)
	_, err = h.svc.Auth.RefreshToken(h.ctx, fresh.Token.RefreshToken)
	assertErr(t, err, nil)

	deleted, err = h.svc.Auth.CleanupTokens(h.ctx)
	assertErr(t, err, nil)
	if deleted != 0 {
		t.Errorf("second cleanup deleted = %d", deleted)
	}
}
