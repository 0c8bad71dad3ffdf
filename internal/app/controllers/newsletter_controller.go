package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewsletterController handles newsletters and their delivery records
type NewsletterController struct {
	newsletterService services.NewsletterService
	logger            zerolog.Logger
}

// NewNewsletterController creates a new NewsletterController
func NewNewsletterController(newsletterService services.NewsletterService, logger zerolog.Logger) *NewsletterController {
	return &NewsletterController{
		newsletterService: newsletterService,
		logger:            logger,
	}
}

// GetNewsletters lists newsletters by status
// @Summary List newsletters
// @Description Without status only PUBLISHED newsletters are returned. DRAFT is visible to STAFF and ADMIN only.
// @Tags newsletters
// @Produce json
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Success 200 {object} dto.APIResponse{data=[]dto.NewsletterResponse} "Newsletters"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Router /newsletters [get]
func (c *NewsletterController) GetNewsletters(ctx *gin.Context) {
	newsletters, err := c.newsletterService.GetNewsletters(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newsletters))
}

// GetFeaturedNewsletters lists featured published newsletters
// @Summary Featured newsletters
// @Tags newsletters
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.NewsletterResponse} "Newsletters"
// @Router /newsletters/featured [get]
func (c *NewsletterController) GetFeaturedNewsletters(ctx *gin.Context) {
	newsletters, err := c.newsletterService.GetFeaturedNewsletters(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newsletters))
}

// GetNewsletter returns one newsletter
// @Summary Get a newsletter
// @Tags newsletters
// @Produce json
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter"
// @Failure 404 {object} dto.ErrorResponse "Newsletter not found"
// @Router /newsletters/{id} [get]
func (c *NewsletterController) GetNewsletter(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	newsletter, err := c.newsletterService.GetNewsletter(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newsletter))
}

// CreateNewsletter stores a newsletter
// @Summary Create a newsletter
// @Tags newsletters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNewsletterRequest true "Newsletter"
// @Success 201 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 404 {object} dto.ErrorResponse "Unknown category"
// @Router /newsletters [post]
func (c *NewsletterController) CreateNewsletter(ctx *gin.Context) {
	var req dto.CreateNewsletterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	newsletter, err := c.newsletterService.CreateNewsletter(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(newsletter))
}

// PublishNewsletter publishes a newsletter and optionally fans it out
// @Summary Publish a newsletter
// @Description DRAFT becomes PUBLISHED. With sendToAll a recipient row is added for every active subscriber.
// @Tags newsletters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Param request body dto.PublishNewsletterRequest false "Fan-out option"
// @Success 200 {object} dto.APIResponse{data=dto.PublishNewsletterResponse} "Newsletter published"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 404 {object} dto.ErrorResponse "Newsletter not found"
// @Failure 409 {object} dto.ErrorResponse "Newsletter is archived"
// @Router /newsletters/{id}/publish [post]
func (c *NewsletterController) PublishNewsletter(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.PublishNewsletterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.newsletterService.PublishNewsletter(ctx.Request.Context(), middleware.CurrentUser(ctx), id, req.SendToAll)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ArchiveNewsletter archives a published newsletter
// @Summary Archive a newsletter
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.NewsletterResponse} "Newsletter archived"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 404 {object} dto.ErrorResponse "Newsletter not found"
// @Failure 409 {object} dto.ErrorResponse "Newsletter is not published"
// @Router /newsletters/{id}/archive [post]
func (c *NewsletterController) ArchiveNewsletter(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	newsletter, err := c.newsletterService.ArchiveNewsletter(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(newsletter))
}

// UploadCover stores a cover image for a newsletter
// @Summary Upload a newsletter cover
// @Tags newsletters
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Param cover formData file true "JPEG, PNG, GIF or WebP image"
// @Success 200 {object} dto.APIResponse{data=dto.CoverUploadResponse} "Cover stored"
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 404 {object} dto.ErrorResponse "Newsletter not found"
// @Router /newsletters/{id}/cover [post]
func (c *NewsletterController) UploadCover(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	file, err := ctx.FormFile("cover")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Cover upload without file")
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("cover", "A cover image file is required"))
		return
	}

	resp, err := c.newsletterService.UploadCover(ctx.Request.Context(), middleware.CurrentUser(ctx), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// MarkOpened records that the caller opened a newsletter
// @Summary Mark a newsletter opened
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.RecipientResponse} "Recipient record"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Caller did not receive the newsletter"
// @Router /newsletters/{id}/opened [post]
func (c *NewsletterController) MarkOpened(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	recipient, err := c.newsletterService.MarkOpened(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(recipient))
}

// MarkClicked records that the caller clicked through a newsletter
// @Summary Mark a newsletter clicked
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.RecipientResponse} "Recipient record"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Caller did not receive the newsletter"
// @Router /newsletters/{id}/clicked [post]
func (c *NewsletterController) MarkClicked(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	recipient, err := c.newsletterService.MarkClicked(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(recipient))
}

// GetRecipients lists who received a newsletter
// @Summary List newsletter recipients
// @Description Delivery records with open and click tracking. STAFF and ADMIN only.
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.RecipientResponse} "Recipient records"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Caller is not staff"
// @Failure 404 {object} dto.ErrorResponse "Newsletter not found"
// @Router /newsletters/{id}/recipients [get]
func (c *NewsletterController) GetRecipients(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	recipients, err := c.newsletterService.GetRecipients(ctx.Request.Context(), middleware.CurrentUser(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(recipients))
}
