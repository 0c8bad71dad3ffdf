package controllers

import (
	"net/http"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/services"
	"github.com/brightnest/daycare/internal/middleware"
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// EventController handles daycare events
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// CreateEvent stores an event
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "STAFF or ADMIN only"
// @Failure 404 {object} dto.ErrorResponse "Unknown category or newsletter"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), middleware.CurrentUser(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event))
}

// GetEvents lists events by active flag
// @Summary List events
// @Tags events
// @Produce json
// @Param isActive query bool false "Active flag, default true"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events [get]
func (c *EventController) GetEvents(ctx *gin.Context) {
	isActive, err := helpers.ParseBoolQuery(ctx, "isActive", true)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	events, err := c.eventService.GetEvents(ctx.Request.Context(), isActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// GetUpcomingEvents lists active events that have not started
// @Summary Upcoming events
// @Tags events
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events/upcoming [get]
func (c *EventController) GetUpcomingEvents(ctx *gin.Context) {
	events, err := c.eventService.GetUpcomingEvents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// GetEvent returns one event
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse} "Event"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.eventService.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}
