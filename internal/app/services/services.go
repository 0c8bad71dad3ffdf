// Package services holds the business rules of the daycare API. Every
// operation takes the acting user explicitly; nil means an anonymous caller.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	jwtauth "github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/filestorage"
	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/brightnest/daycare/internal/pkg/revocation"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Repos       *repositories.Repositories
	JWT         *jwtauth.JWTService
	Revocations revocation.List
	Storage     filestorage.ImageStorage
	Publisher   messaging.Publisher
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger

	// Now defaults to time.Now
	Now func() time.Time

	AllowStaffSelfRegistration bool
}

// Services holds all service instances
type Services struct {
	Auth         AuthService
	User         UserService
	Child        ChildService
	Category     CategoryService
	Newsletter   NewsletterService
	Announcement AnnouncementService
	Event        EventService
	Subscription SubscriptionService
}

// NewServices wires every service from deps
func NewServices(deps Dependencies) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NewLogPublisher(deps.Logger)
	}
	if deps.Revocations == nil {
		deps.Revocations = revocation.NewMemoryList()
	}
	repos := deps.Repos
	authz := auth.NewAuthorizationService(repos.UserRepository)

	return &Services{
		Auth:         NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWT, deps.Revocations, deps.Metrics, deps.Now, deps.Logger),
		User:         NewUserService(repos.UserRepository, repos.ChildRepository, deps.AllowStaffSelfRegistration, deps.Now, deps.Logger),
		Child:        NewChildService(repos.ChildRepository, authz, deps.Metrics, deps.Now, deps.Logger),
		Category:     NewCategoryService(repos.CategoryRepository, deps.Metrics, deps.Logger),
		Newsletter:   NewNewsletterService(repos.NewsletterRepository, repos.CategoryRepository, deps.Storage, deps.Publisher, deps.Metrics, deps.Now, deps.Logger),
		Announcement: NewAnnouncementService(repos.AnnouncementRepository, repos.CategoryRepository, deps.Publisher, deps.Metrics, deps.Now, deps.Logger),
		Event:        NewEventService(repos.EventRepository, repos.CategoryRepository, repos.NewsletterRepository, deps.Publisher, deps.Metrics, deps.Now, deps.Logger),
		Subscription: NewSubscriptionService(repos.SubscriptionRepository, deps.Now, deps.Logger),
	}
}

// notFound replaces a repository sentinel with a NotFound error carrying message
func notFound(err, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return err
}

// checkIDs fails with NotFound when any of ids is unknown to lookup
func checkIDs(ctx context.Context, ids []int64, lookup func(context.Context, []int64) ([]int64, error), what string) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := lookup(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check %s ids: %w", what, err)
	}
	if len(missing) > 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found: %v", what, missing))
	}
	return nil
}

// publishEvent delivers evt after its change was committed. Delivery problems
// are logged and never fail the request.
func publishEvent(ctx context.Context, publisher messaging.Publisher, logger zerolog.Logger, evt messaging.Event) {
	if err := publisher.Publish(ctx, evt); err != nil {
		logger.Warn().
			Err(err).
			Str("type", evt.Type).
			Int64("entityID", evt.EntityID).
			Msg("Failed to publish content event")
	}
}
