package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/filestorage"
	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

const (
	msgNewsletterNotFound = "Newsletter not found"
	coverSubPath          = "covers"
)

// NewsletterService defines the interface for newsletter operations
type NewsletterService interface {
	CreateNewsletter(ctx context.Context, actor *models.User, req *dto.CreateNewsletterRequest) (*dto.NewsletterResponse, error)
	GetNewsletters(ctx context.Context, actor *models.User, status string) ([]*dto.NewsletterResponse, error)
	GetFeaturedNewsletters(ctx context.Context) ([]*dto.NewsletterResponse, error)
	GetNewsletter(ctx context.Context, actor *models.User, id int64) (*dto.NewsletterResponse, error)
	PublishNewsletter(ctx context.Context, actor *models.User, id int64, sendToAll bool) (*dto.PublishNewsletterResponse, error)
	ArchiveNewsletter(ctx context.Context, actor *models.User, id int64) (*dto.NewsletterResponse, error)
	UploadCover(ctx context.Context, actor *models.User, id int64, file *multipart.FileHeader) (*dto.CoverUploadResponse, error)
	MarkOpened(ctx context.Context, actor *models.User, id int64) (*dto.RecipientResponse, error)
	MarkClicked(ctx context.Context, actor *models.User, id int64) (*dto.RecipientResponse, error)
	GetRecipients(ctx context.Context, actor *models.User, id int64) ([]*dto.RecipientResponse, error)
}

// newsletterServiceImpl implements NewsletterService
type newsletterServiceImpl struct {
	newsletterRepo repositories.INewsletterRepository
	categoryRepo   repositories.ICategoryRepository
	storage        filestorage.ImageStorage
	publisher      messaging.Publisher
	metrics        *metrics.Metrics
	now            func() time.Time
	logger         zerolog.Logger
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(
	newsletterRepo repositories.INewsletterRepository,
	categoryRepo repositories.ICategoryRepository,
	storage filestorage.ImageStorage,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	now func() time.Time,
	logger zerolog.Logger,
) NewsletterService {
	return &newsletterServiceImpl{
		newsletterRepo: newsletterRepo,
		categoryRepo:   categoryRepo,
		storage:        storage,
		publisher:      publisher,
		metrics:        m,
		now:            now,
		logger:         logger,
	}
}

// CreateNewsletter stores a DRAFT or, when asked, an immediately PUBLISHED
// newsletter. Creating one as PUBLISHED does not send it to anyone.
func (s *newsletterServiceImpl) CreateNewsletter(ctx context.Context, actor *models.User, req *dto.CreateNewsletterRequest) (*dto.NewsletterResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if req.Status != "" {
		parsed, err := models.ParseNewsletterStatus(req.Status)
		if err != nil {
			return nil, apperrors.NewValidationError("status", "Status must be DRAFT or PUBLISHED")
		}
		status = parsed
	}
	if status == models.StatusArchived {
		return nil, apperrors.NewValidationError("status", "A newsletter cannot be created archived")
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

	now := s.now()
	newsletter := &models.Newsletter{
		Title:       title,
		Subtitle:    req.Subtitle,
		Content:     req.Content,
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      models.StatusDraft,
		Featured:    req.Featured,
		CategoryIDs: req.CategoryIDs,
	}
	if status == models.StatusPublished {
		if _, err := newsletter.Publish(now); err != nil {
			return nil, err
		}
	}

	if err := s.newsletterRepo.Create(ctx, newsletter); err != nil {
		return nil, notFound(err, apperrors.ErrCategoryNotFound, "Category not found")
	}
	s.metrics.ContentCreated("newsletter")

	s.logger.Info().
		Int64("newsletterID", newsletter.ID).
		Str("status", string(newsletter.Status)).
		Int64("actorID", actor.ID).
		Msg("Newsletter created")

	if newsletter.Status == models.StatusPublished {
		s.metrics.NewsletterPublished(true, 0)
		publishEvent(ctx, s.publisher, s.logger, messaging.Event{
			Type:       messaging.TypeNewsletterPublished,
			EntityID:   newsletter.ID,
			Title:      newsletter.Title,
			ActorID:    actor.ID,
			OccurredAt: now,
		})
	}
	return dto.NewNewsletterResponse(newsletter), nil
}

// GetNewsletters lists newsletters by status, PUBLISHED when status is empty.
// Drafts are only listed for STAFF and ADMIN; other callers get an empty list.
func (s *newsletterServiceImpl) GetNewsletters(ctx context.Context, actor *models.User, status string) ([]*dto.NewsletterResponse, error) {
	filter := repositories.NewsletterFilter{Status: models.StatusPublished}
	if status != "" {
		parsed, err := models.ParseNewsletterStatus(status)
		if err != nil {
			return nil, apperrors.NewValidationError("status", "Status must be one of DRAFT, PUBLISHED, ARCHIVED")
		}
		filter.Status = parsed
	}
	if filter.Status == models.StatusDraft && !auth.CanViewDrafts(actor) {
		return []*dto.NewsletterResponse{}, nil
	}

	newsletters, err := s.newsletterRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list newsletters: %w", err)
	}
	return dto.NewNewsletterListResponse(newsletters), nil
}

// GetFeaturedNewsletters lists featured PUBLISHED newsletters
func (s *newsletterServiceImpl) GetFeaturedNewsletters(ctx context.Context) ([]*dto.NewsletterResponse, error) {
	newsletters, err := s.newsletterRepo.List(ctx, repositories.NewsletterFilter{
		Status:       models.StatusPublished,
		FeaturedOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list featured newsletters: %w", err)
	}
	return dto.NewNewsletterListResponse(newsletters), nil
}

// GetNewsletter returns one newsletter. Drafts are hidden from non-authors.
func (s *newsletterServiceImpl) GetNewsletter(ctx context.Context, actor *models.User, id int64) (*dto.NewsletterResponse, error) {
	newsletter, err := s.visibleNewsletter(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return dto.NewNewsletterResponse(newsletter), nil
}

// PublishNewsletter publishes a newsletter and, with sendToAll, records a
// recipient for every active subscriber. Status change and fan-out are
// stored together.
func (s *newsletterServiceImpl) PublishNewsletter(ctx context.Context, actor *models.User, id int64, sendToAll bool) (*dto.PublishNewsletterResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	now := s.now()
	changed, err := newsletter.Publish(now)
	if err != nil {
		return nil, apperrors.NewInvalidStateError("Archived newsletters cannot be published")
	}
	if sendToAll {
		newsletter.SentToAll = true
		newsletter.UpdatedAt = now
	}

	var added int64
	if changed || sendToAll {
		added, err = s.newsletterRepo.SavePublication(ctx, newsletter, sendToAll, now)
		if err != nil {
			return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
		}
	}
	s.metrics.NewsletterPublished(changed, added)

	s.logger.Info().
		Int64("newsletterID", newsletter.ID).
		Bool("statusChanged", changed).
		Bool("sendToAll", sendToAll).
		Int64("recipientsAdded", added).
		Int64("actorID", actor.ID).
		Msg("Newsletter published")

	if changed || added > 0 {
		publishEvent(ctx, s.publisher, s.logger, messaging.Event{
			Type:       messaging.TypeNewsletterPublished,
			EntityID:   newsletter.ID,
			Title:      newsletter.Title,
			ActorID:    actor.ID,
			Recipients: added,
			OccurredAt: now,
		})
	}

	return &dto.PublishNewsletterResponse{
		Newsletter:      dto.NewNewsletterResponse(newsletter),
		RecipientsAdded: added,
	}, nil
}

// ArchiveNewsletter moves a PUBLISHED newsletter to ARCHIVED
func (s *newsletterServiceImpl) ArchiveNewsletter(ctx context.Context, actor *models.User, id int64) (*dto.NewsletterResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	if err := newsletter.Archive(s.now()); err != nil {
		if errors.Is(err, models.ErrNewsletterArchived) {
			return nil, apperrors.NewInvalidStateError("Newsletter is already archived")
		}
		return nil, apperrors.NewInvalidStateError("Only published newsletters can be archived")
	}

	if _, err := s.newsletterRepo.SavePublication(ctx, newsletter, false, newsletter.UpdatedAt); err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	s.logger.Info().
		Int64("newsletterID", newsletter.ID).
		Int64("actorID", actor.ID).
		Msg("Newsletter archived")
	return dto.NewNewsletterResponse(newsletter), nil
}

// UploadCover stores a cover image and replaces the previous one
func (s *newsletterServiceImpl) UploadCover(ctx context.Context, actor *models.User, id int64, file *multipart.FileHeader) (*dto.CoverUploadResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, errors.New("file storage is not configured")
	}

	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	url, err := s.storage.SaveImage(file, coverSubPath)
	if err != nil {
		switch {
		case errors.Is(err, filestorage.ErrNoFile):
			return nil, apperrors.NewValidationError("cover", "A cover image is required")
		case errors.Is(err, filestorage.ErrFileTooLarge):
			return nil, apperrors.NewValidationError("cover", "Cover image is too large")
		case errors.Is(err, filestorage.ErrUnsupportedType):
			return nil, apperrors.NewValidationError("cover", "Cover must be a JPEG, PNG, GIF or WebP image")
		}
		return nil, fmt.Errorf("failed to store cover image: %w", err)
	}

	if err := s.newsletterRepo.UpdateCover(ctx, id, url, s.now()); err != nil {
		if delErr := s.storage.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned cover")
		}
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	if old := newsletter.CoverImageURL; old != nil && *old != "" {
		if err := s.storage.DeleteFile(*old); err != nil {
			s.logger.Warn().Err(err).Str("url", *old).Msg("Failed to remove previous cover")
		}
	}

	return &dto.CoverUploadResponse{CoverImageURL: url}, nil
}

// MarkOpened records the caller's first open of a newsletter
func (s *newsletterServiceImpl) MarkOpened(ctx context.Context, actor *models.User, id int64) (*dto.RecipientResponse, error) {
	return s.track(ctx, actor, id, func(r *models.NewsletterRecipient) bool {
		return r.MarkOpened(s.now())
	})
}

// MarkClicked records that the caller clicked through a newsletter
func (s *newsletterServiceImpl) MarkClicked(ctx context.Context, actor *models.User, id int64) (*dto.RecipientResponse, error) {
	return s.track(ctx, actor, id, func(r *models.NewsletterRecipient) bool {
		return r.MarkClicked()
	})
}

// GetRecipients lists the delivery records of a newsletter; STAFF and ADMIN only
func (s *newsletterServiceImpl) GetRecipients(ctx context.Context, actor *models.User, id int64) ([]*dto.RecipientResponse, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}
	if _, err := s.newsletterRepo.GetByID(ctx, id); err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}

	recipients, err := s.newsletterRepo.ListRecipients(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list newsletter recipients: %w", err)
	}
	return dto.NewRecipientListResponse(recipients), nil
}

func (s *newsletterServiceImpl) track(ctx context.Context, actor *models.User, id int64, mark func(*models.NewsletterRecipient) bool) (*dto.RecipientResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if _, err := s.visibleNewsletter(ctx, actor, id); err != nil {
		return nil, err
	}

	recipient, err := s.newsletterRepo.GetRecipient(ctx, id, actor.ID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrRecipientNotFound, "You did not receive this newsletter")
	}

	if mark(recipient) {
		if err := s.newsletterRepo.UpdateRecipient(ctx, recipient); err != nil {
			return nil, notFound(err, apperrors.ErrRecipientNotFound, "You did not receive this newsletter")
		}
	}
	return dto.NewRecipientResponse(recipient), nil
}

// visibleNewsletter loads a newsletter, hiding drafts from callers who cannot author content
func (s *newsletterServiceImpl) visibleNewsletter(ctx context.Context, actor *models.User, id int64) (*models.Newsletter, error) {
	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrNewsletterNotFound, msgNewsletterNotFound)
	}
	if newsletter.Status == models.StatusDraft && !auth.CanViewDrafts(actor) {
		return nil, apperrors.NewResourceNotFoundError(msgNewsletterNotFound)
	}
	return newsletter, nil
}
