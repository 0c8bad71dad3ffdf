package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories/memory"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if resp.Success || resp.Error == nil {
		t.Fatalf("not an error envelope: %s", w.Body.String())
	}
	return resp.Error
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	active := &models.User{Email: "parent@example.com", Role: models.RoleParent, IsActive: true}
	inactive := &models.User{Email: "gone@example.com", Role: models.RoleParent}
	for _, u := range []*models.User{active, inactive} {
		if err := repos.UserRepository.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "daycare-test",
	})
	revocations := revocation.NewMemoryList()
	mw := NewAuthMiddleware(jwtService, repos.UserRepository, revocations, zerolog.Nop())

	router := gin.New()
	router.Use(mw.Authenticate())
	router.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		if CurrentClaims(c) == nil {
			c.String(http.StatusInternalServerError, "claims missing")
			return
		}
		c.String(http.StatusOK, user.Email)
	})

	issue := func(u *models.User) *auth.TokenPair {
		pair, err := jwtService.GenerateTokenPair(u)
		if err != nil {
			t.Fatal(err)
		}
		return pair
	}
	good := issue(active)
	revoked := issue(active)
	if err := revocations.Revoke(ctx, revoked.AccessTokenID, time.Hour); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "anonymous"},
		{"valid bearer", "Bearer " + good.AccessToken, "parent@example.com"},
		{"JWT prefix", "JWT " + good.AccessToken, "parent@example.com"},
		{"garbage", "Bearer not-a-token", "anonymous"},
		{"revoked", "Bearer " + revoked.AccessToken, "anonymous"},
		{"inactive user", "Bearer " + issue(inactive).AccessToken, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Errorf("got %d %q, want %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{"unauthenticated", apperrors.NewUnauthenticatedError("Authentication required"), 401, dto.ErrorCodeUnauthorized, "Authentication required", ""},
		{"forbidden", apperrors.NewForbiddenError("Only staff can do that"), 403, dto.ErrorCodeForbidden, "Only staff can do that", ""},
		{"not found", apperrors.NewResourceNotFoundError("Newsletter not found"), 404, dto.ErrorCodeResourceNotFound, "Newsletter not found", ""},
		{"invalid state", apperrors.NewInvalidStateError("Children can only belong to parent accounts"), 409, dto.ErrorCodeInvalidState, "Children can only belong to parent accounts", ""},
		{"validation", apperrors.NewValidationError("email", "Invalid email format"), 400, dto.ErrorCodeValidationFailed, "Invalid email format", "email"},
		{"credentials", apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Please enter valid credentials"), 401, dto.ErrorCodeInvalidCredentials, "Please enter valid credentials", ""},
		{"expired", apperrors.NewCustomError(apperrors.ErrTokenExpired, "Signature has expired"), 401, dto.ErrorCodeExpiredToken, "Signature has expired", ""},
		{"email taken", apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "A user with this email already exists"), 409, dto.ErrorCodeResourceAlreadyExists, "A user with this email already exists", ""},
		{"conflict", apperrors.NewConflictError("A category with this name already exists"), 409, dto.ErrorCodeResourceAlreadyExists, "A category with this name already exists", ""},
		{"bare sentinel", apperrors.ErrPermissionDenied, 403, dto.ErrorCodeForbidden, "Permission denied", ""},
		{"unknown", errors.New("connection reset"), 500, dto.ErrorCodeInternalServer, "Internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			detail := decodeError(t, w)
			if detail.Code != tt.code || detail.Message != tt.message || detail.Field != tt.field {
				t.Errorf("detail = %+v", detail)
			}
		})
	}
}

func TestHandleBindingError(t *testing.T) {
	router := gin.New()
	router.POST("/login", func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		body  string
		field string
	}{
		{`{"password":"x"}`, "email"},
		{`{"email":"nope","password":"x"}`, "email"},
		{`{"email":"a@example.com"}`, "password"},
		{`{`, ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", tt.body, w.Code)
		}
		detail := decodeError(t, w)
		if detail.Code != dto.ErrorCodeValidationFailed || detail.Field != tt.field {
			t.Errorf("%s: detail = %+v", tt.body, detail)
		}
	}
}

func TestJSONName(t *testing.T) {
	for in, want := range map[string]string{
		"FirstName":      "firstName",
		"ID":             "id",
		"ParentID":       "parentID",
		"CategoryIDs[0]": "categoryIDs",
		"URLPath":        "urlPath",
		"email":          "email",
	} {
		if got := jsonName(in); got != want {
			t.Errorf("jsonName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, preflight)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("preflight = %d %v", w.Code, w.Header())
	}

	foreign := httptest.NewRequest(http.MethodGet, "/ping", nil)
	foreign.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, foreign)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign origin = %d %v", w.Code, w.Header())
	}
}
