package controllers

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SubscriptionController handles newsletter subscriptions and groups
type SubscriptionController struct {
	subscriptionService services.SubscriptionService
}

// NewSubscriptionController creates a new SubscriptionController
func NewSubscriptionController(subscriptionService services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptionService: subscriptionService}
}

// GetGroups lists subscription groups
// @Summary List subscription groups
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.SubscriptionGroup} "Groups"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /subscription-groups [get]
func (c *SubscriptionController) GetGroups(ctx *gin.Context) {
	groups, err := c.subscriptionService.GetGroups(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups))
}

// CreateGroup adds a subscription group
// @Summary Create a subscription group
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubscriptionGroupRequest true "Group"
// @Success 201 {object} dto.APIResponse{data=models.SubscriptionGroup} "Group created"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "ADMIN only"
// @Failure 409 {object} dto.ErrorResponse "Name already used"
// @Router /subscription-groups [post]
func (c *SubscriptionController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateSubscriptionGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	group, err := c.subscriptionService.CreateGroup(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group))
}

// MySubscription returns the caller's subscription
// @Summary Current subscription
// @Description Returns the caller's subscription, creating a subscribed one on first access
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionResponse} "Subscription"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /subscription [get]
func (c *SubscriptionController) MySubscription(ctx *gin.Context) {
	sub, err := c.subscriptionService.MySubscription(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sub))
}

// UpdateSubscription changes the caller's opt-in state and groups
// @Summary Update subscription
// @Description Present groupIds (even empty) replace the memberships. Unknown groups change nothing.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateSubscriptionRequest true "Subscription state"
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionResponse} "Subscription"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Unknown subscription group"
// @Router /subscription [put]
func (c *SubscriptionController) UpdateSubscription(ctx *gin.Context) {
	var req dto.UpdateSubscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	sub, err := c.subscriptionService.UpdateSubscription(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sub))
}
