package controllers

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// ChildController handles children records
type ChildController struct {
	childService services.ChildService
}

// NewChildController creates a new ChildController
func NewChildController(childService services.ChildService) *ChildController {
	return &ChildController{childService: childService}
}

// CreateChild adds a child under a parent account
// @Summary Create a child
// @Description The parent themselves, STAFF or ADMIN may add a child. The parent must have role PARENT.
// @Tags children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateChildRequest true "Child information"
// @Success 201 {object} dto.APIResponse{data=dto.ChildResponse} "Child created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Failure 409 {object} dto.ErrorResponse "Parent account is not a PARENT"
// @Router /children [post]
func (c *ChildController) CreateChild(ctx *gin.Context) {
	var req dto.CreateChildRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	child, err := c.childService.CreateChild(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(child))
}

// GetChildren lists visible children
// @Summary List children
// @Description STAFF and ADMIN see all children; parents see their own
// @Tags children
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ChildResponse} "Children"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /children [get]
func (c *ChildController) GetChildren(ctx *gin.Context) {
	children, err := c.childService.GetChildren(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(children))
}

// GetChild returns one child
// @Summary Get a child
// @Tags children
// @Produce json
// @Security BearerAuth
// @Param id path int true "Child ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ChildResponse} "Child"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Child not found"
// @Router /children/{id} [get]
func (c *ChildController) GetChild(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	child, err := c.childService.GetChild(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(child))
}
