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

// AnnouncementService defines the interface for announcements
type AnnouncementService interface {
	CreateAnnouncement(ctx context.Context, actor *models.User, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	GetAnnouncements(ctx context.Context, isActive bool) ([]*dto.AnnouncementResponse, error)
	GetAnnouncement(ctx context.Context, id int64) (*dto.AnnouncementResponse, error)
}

// announcementServiceImpl implements AnnouncementService
type announcementServiceImpl struct {
	announcementRepo repositories.IAnnouncementRepository
	categoryRepo     repositories.ICategoryRepository
	publisher        messaging.Publisher
	metrics          *metrics.Metrics
	now              func() time.Time
	logger           zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(
	announcementRepo repositories.IAnnouncementRepository,
	categoryRepo repositories.ICategoryRepository,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	now func() time.Time,
	logger zerolog.Logger,
) AnnouncementService {
	return &announcementServiceImpl{
		announcementRepo: announcementRepo,
		categoryRepo:     categoryRepo,
		publisher:        publisher,
		metrics:          m,
		now:              now,
		logger:           logger,
	}
}

// CreateAnnouncement stores an announcement; STAFF and ADMIN only.
// A past expiry date is accepted and the announcement is simply expired.
func (s *announcementServiceImpl) CreateAnnouncement(ctx context.Context, actor *models.User, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		parsed, err := models.ParsePriority(req.Priority)
		if err != nil {
			return nil, apperrors.NewValidationError("priority", "Priority must be one of LOW, MEDIUM, HIGH, URGENT")
		}
		priority = parsed
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("content", "Content is required")
	}
	if err := checkIDs(ctx, req.CategoryIDs, s.categoryRepo.MissingIDs, "Category"); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	announcement := &models.Announcement{
		Title:       title,
		Content:     req.Content,
		CreatedByID: actor.ID,
		CreatedAt:   now,
		ExpiryDate:  req.ExpiryDate,
		Priority:    priority,
		IsActive:    isActive,
		CategoryIDs: req.CategoryIDs,
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, notFound(err, apperrors.ErrCategoryNotFound, "Category not found")
	}
	s.metrics.ContentCreated("announcement")

	s.logger.Info().
		Int64("announcementID", announcement.ID).
		Str("priority", string(priority)).
		Int64("actorID", actor.ID).
		Msg("Announcement created")

	publishEvent(ctx, s.publisher, s.logger, messaging.Event{
		Type:       messaging.TypeAnnouncementCreated,
		EntityID:   announcement.ID,
		Title:      announcement.Title,
		ActorID:    actor.ID,
		OccurredAt: now,
	})
	return dto.NewAnnouncementResponse(announcement, now), nil
}

// GetAnnouncements lists announcements by active flag. Expired ones are included.
func (s *announcementServiceImpl) GetAnnouncements(ctx context.Context, isActive bool) ([]*dto.AnnouncementResponse, error) {
	announcements, err := s.announcementRepo.List(ctx, isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	now := s.now()
	out := make([]*dto.AnnouncementResponse, 0, len(announcements))
	for _, a := range announcements {
		out = append(out, dto.NewAnnouncementResponse(a, now))
	}
	return out, nil
}

// GetAnnouncement returns one announcement
func (s *announcementServiceImpl) GetAnnouncement(ctx context.Context, id int64) (*dto.AnnouncementResponse, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAnnouncementNotFound, "Announcement not found")
	}
	return dto.NewAnnouncementResponse(announcement, s.now()), nil
}
