// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthController handles token issuing, verification, rotation and revocation
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// TokenAuth handles login
// @Summary Obtain a token pair
// @Description Exchanges email and password for an access token and a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (c *AuthController) TokenAuth(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.TokenAuth(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", resp.User.ID).Msg("User logged in successfully")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// VerifyToken decodes an access token
// @Summary Verify an access token
// @Description Returns the claims of a valid, unrevoked access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyTokenRequest true "Access token"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyTokenResponse} "Token is valid"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Expired, invalid or revoked token"
// @Router /auth/verify [post]
func (c *AuthController) VerifyToken(ctx *gin.Context) {
	var req dto.VerifyTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.VerifyToken(ctx.Request.Context(), req.Token)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Rotates a refresh token: the old one is revoked and a new pair is issued
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid refresh token request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// RevokeToken handles logout
// @Summary Revoke tokens
// @Description Revokes the presented access token and, when given, one of the caller's refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RevokeTokenRequest false "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Tokens revoked"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Refresh token belongs to another user"
// @Router /auth/revoke [post]
func (c *AuthController) RevokeToken(ctx *gin.Context) {
	var req dto.RevokeTokenRequest
	// the body is optional
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleBindingError(ctx, err)
		return
	}

	err := c.authService.RevokeToken(ctx.Request.Context(), middleware.CurrentUser(ctx), middleware.CurrentClaims(ctx), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Tokens revoked"}))
}
