package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// EventService defines the interface for events
type EventService interface {
	CreateEvent(ctx context.Context, actor *models.User, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvents(ctx context.Context, isActive bool) ([]*dto.EventResponse, error)
	GetUpcomingEvents(ctx context.Context) ([]*dto.EventResponse, error)
	GetEvent(ctx context.Context, id int64) (*dto.EventResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo      repositories.IEventRepository
	categoryRepo   repositories.ICategoryRepository
	newsletterRepo repositories.INewsletterRepository
	publisher      messaging.Publisher
	metrics        *metrics.Metrics
	now            func() time.Time
	logger         zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repositories.IEventRepository,
	categoryRepo repositories.ICategoryRepository,
	newsletterRepo repositories.INewsletterRepository,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	now func() time.Time,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		newsletterRepo: newsletterRepo,
		publisher:      publisher,
		metrics:        m,
		now:            now,
		logger:         logger,
	}
}

// CreateEvent stores an event; STAFF and ADMIN only
func (s *eventServiceImpl) CreateEvent(ctx context.Context, actor *models.User, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, apperrors.NewValidationError("startDate", "Start and end date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, apperrors.NewValidationError("endDate", "End date cannot be before start date")
	}
	if err := checkIDs(ctx, req.CategoryIDs, s.categoryRepo.MissingIDs, "Category"); err != nil {
		return nil, err
	}
	if err := checkIDs(ctx, req.NewsletterIDs, s.newsletterRepo.MissingIDs, "Newsletter"); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	event := &models.Event{
		Title:         title,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Location:      strings.TrimSpace(req.Location),
		CreatedByID:   actor.ID,
		IsActive:      isActive,
		CategoryIDs:   req.CategoryIDs,
		NewsletterIDs: req.NewsletterIDs,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		err = notFound(err, apperrors.ErrCategoryNotFound, "Category not found")
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, "Newsletter not found")
	}
	s.metrics.ContentCreated("event")

	now := s.now()
	s.logger.Info().
		Int64("eventID", event.ID).
		Time("startDate", event.StartDate).
		Int64("actorID", actor.ID).
		Msg("Event created")

	publishEvent(ctx, s.publisher, s.logger, messaging.Event{
		Type:       messaging.TypeEventCreated,
		EntityID:   event.ID,
		Title:      event.Title,
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return dto.NewEventResponse(event, now), nil
}

// GetEvents lists events by active flag, earliest first. Past events are included.
func (s *eventServiceImpl) GetEvents(ctx context.Context, isActive bool) ([]*dto.EventResponse, error) {
	events, err := s.eventRepo.List(ctx, isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return s.toResponses(events), nil
}

// GetUpcomingEvents lists active events that have not started yet
func (s *eventServiceImpl) GetUpcomingEvents(ctx context.Context) ([]*dto.EventResponse, error) {
	events, err := s.eventRepo.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return s.toResponses(events), nil
}

// GetEvent returns one event
func (s *eventServiceImpl) GetEvent(ctx context.Context, id int64) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrEventNotFound, "Event not found")
	}
	return dto.NewEventResponse(event, s.now()), nil
}

func (s *eventServiceImpl) toResponses(events []*models.Event) []*dto.EventResponse {
	now := s.now()
	out := make([]*dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.NewEventResponse(e, now))
	}
	return out
}
