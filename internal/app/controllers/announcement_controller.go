package controllers

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// AnnouncementController handles announcements
type AnnouncementController struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcementService: announcementService}
}

// CreateAnnouncement stores an announcement
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Announcement created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Router /announcements [post]
func (c *AnnouncementController) CreateAnnouncement(ctx *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	announcement, err := c.announcementService.CreateAnnouncement(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(announcement))
}

// GetAnnouncements lists announcements by active flag
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Param isActive query bool false "Active flag, default true"
// @Success 200 {object} dto.APIResponse{data=[]dto.AnnouncementResponse} "Announcements"
// @Router /announcements [get]
func (c *AnnouncementController) GetAnnouncements(ctx *gin.Context) {
	isActive, err := helpers.ParseBoolQuery(ctx, "isActive", true)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	announcements, err := c.announcementService.GetAnnouncements(ctx.Request.Context(), isActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(announcements))
}

// GetAnnouncement returns one announcement
// @Summary Get an announcement
// @Tags announcements
// @Produce json
// @Param id path int true "Announcement ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementResponse} "Announcement"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [get]
func (c *AnnouncementController) GetAnnouncement(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	announcement, err := c.announcementService.GetAnnouncement(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(announcement))
}
