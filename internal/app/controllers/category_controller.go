package controllers

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// CategoryController handles content categories
type CategoryController struct {
	categoryService services.CategoryService
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(categoryService services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// CreateCategory adds a category
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.APIResponse{data=models.Category} "Category created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 409 {object} dto.ErrorResponse "Name already used"
// @Router /categories [post]
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	category, err := c.categoryService.CreateCategory(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(category))
}

// GetCategories lists categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Category} "Categories"
// @Router /categories [get]
func (c *CategoryController) GetCategories(ctx *gin.Context) {
	categories, err := c.categoryService.GetCategories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(categories))
}

// GetCategory returns one category
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Category} "Category"
// @Failure 404 {object} dto.ErrorResponse "Category not found"
// @Router /categories/{id} [get]
func (c *CategoryController) GetCategory(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	category, err := c.categoryService.GetCategory(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(category))
}
