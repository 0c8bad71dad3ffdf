package middleware

import (
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys set by Authenticate
const (
	currentUserKey = "currentUser"
	claimsKey      = "claims"
)

// AuthMiddleware resolves the caller identity from a bearer token
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	userRepo    repositories.IUserRepository
	revocations revocation.List
	logger      zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, userRepo repositories.IUserRepository, revocations revocation.List, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		userRepo:    userRepo,
		revocations: revocations,
		logger:      logger,
	}
}

// Authenticate attaches the caller to the context when the request carries a
// valid bearer token. It never aborts: a missing, malformed, expired or
// revoked token leaves the request anonymous and the services decide.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString, err := auth.ExtractBearerToken(header)
		if err != nil {
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Ignoring invalid bearer token")
			c.Next()
			return
		}

		revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Revocation check failed, treating caller as anonymous")
			c.Next()
			return
		}
		if revoked {
			c.Next()
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil for anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentClaims returns the claims of the access token the caller presented
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
