package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT(now time.Time) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "daycare-test",
	}).WithClock(func() time.Time { return now })
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	now := time.Now()
	svc := newTestJWT(now)
	user := &models.User{ID: 7, Email: "parent@example.com", Role: models.RoleParent}

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if pair.RefreshToken == "" || pair.AccessTokenID == "" {
		t.Fatal("expected refresh token and jti")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d", pair.ExpiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims() error = %v", err)
	}
	if claims.UserID != 7 || claims.Role != "PARENT" || claims.ID != pair.AccessTokenID {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	old := newTestJWT(issuedAt)
	user := &models.User{ID: 1, Email: "a@example.com", Role: models.RoleStaff}
	pair, err := old.GenerateTokenPair(user)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("expired", func(t *testing.T) {
		_, err := newTestJWT(time.Now()).ValidateToken(pair.AccessToken)
		if !errors.Is(err, ErrExpiredToken) {
			t.Errorf("err = %v, want ErrExpiredToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "daycare-test"}).
			WithClock(func() time.Time { return issuedAt })
		_, err := other.ValidateToken(pair.AccessToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := old.ValidateAndExtractClaims("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v", err)
		}
		if _, err := old.ValidateAndExtractClaims(""); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"JWT abc", "abc", false},
		{"abc", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Bearer", "", true},
		{"  JWT   ", "", true},
		{" Bearer  abc ", "abc", false},
		{"Bearer abc def", "", true},
		{"Basic abc", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = 12 })

	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("matching password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
