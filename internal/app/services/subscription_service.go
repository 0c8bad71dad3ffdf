package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// SubscriptionService defines the interface for newsletter subscriptions
type SubscriptionService interface {
	GetGroups(ctx context.Context, actor *models.User) ([]*models.SubscriptionGroup, error)
	CreateGroup(ctx context.Context, actor *models.User, req *dto.CreateSubscriptionGroupRequest) (*models.SubscriptionGroup, error)
	MySubscription(ctx context.Context, actor *models.User) (*dto.SubscriptionResponse, error)
	UpdateSubscription(ctx context.Context, actor *models.User, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
}

// subscriptionServiceImpl implements SubscriptionService
type subscriptionServiceImpl struct {
	subscriptionRepo repositories.ISubscriptionRepository
	now              func() time.Time
	logger           zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(subscriptionRepo repositories.ISubscriptionRepository, now func() time.Time, logger zerolog.Logger) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriptionRepo: subscriptionRepo,
		now:              now,
		logger:           logger,
	}
}

// GetGroups lists the subscription groups
func (s *subscriptionServiceImpl) GetGroups(ctx context.Context, actor *models.User) ([]*models.SubscriptionGroup, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	groups, err := s.subscriptionRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription groups: %w", err)
	}
	return groups, nil
}

// CreateGroup adds a subscription group; ADMIN only
func (s *subscriptionServiceImpl) CreateGroup(ctx context.Context, actor *models.User, req *dto.CreateSubscriptionGroupRequest) (*models.SubscriptionGroup, error) {
	if err := auth.ValidateAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "Name is required")
	}

	group := &models.SubscriptionGroup{Name: name, Description: req.Description}
	if err := s.subscriptionRepo.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create subscription group: %w", err)
	}

	s.logger.Info().Int64("groupID", group.ID).Str("name", group.Name).Msg("Subscription group created")
	return group, nil
}

// MySubscription returns the caller's subscription, creating it on first access
func (s *subscriptionServiceImpl) MySubscription(ctx context.Context, actor *models.User) (*dto.SubscriptionResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	sub, err := s.subscriptionRepo.GetOrCreate(ctx, actor.ID, s.now())
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// UpdateSubscription switches the caller's opt-in state and, when GroupIDs is
// present, replaces the group memberships. Unknown groups change nothing.
func (s *subscriptionServiceImpl) UpdateSubscription(ctx context.Context, actor *models.User, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if req.IsSubscribed == nil {
		return nil, apperrors.NewValidationError("isSubscribed", "isSubscribed is required")
	}

	replaceGroups := req.GroupIDs != nil
	if replaceGroups {
		if err := checkIDs(ctx, req.GroupIDs, s.subscriptionRepo.MissingGroupIDs, "Subscription group"); err != nil {
			return nil, err
		}
	}

	now := s.now()
	sub, err := s.subscriptionRepo.GetOrCreate(ctx, actor.ID, now)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}

	changed := sub.SetSubscribed(*req.IsSubscribed, now)
	if replaceGroups {
		sub.GroupIDs = req.GroupIDs
	}

	if changed || replaceGroups {
		if err := s.subscriptionRepo.Save(ctx, sub, replaceGroups); err != nil {
			err = notFound(err, apperrors.ErrGroupNotFound, "Subscription group not found")
			return nil, notFound(err, apperrors.ErrSubscriptionNotFound, "Subscription not found")
		}
	}
	if replaceGroups {
		// reload for the stored, normalized membership list
		if sub, err = s.subscriptionRepo.GetOrCreate(ctx, actor.ID, now); err != nil {
			return nil, fmt.Errorf("failed to reload subscription: %w", err)
		}
	}

	s.logger.Info().
		Int64("userID", actor.ID).
		Bool("isSubscribed", sub.IsSubscribed).
		Bool("stateChanged", changed).
		Bool("groupsReplaced", replaceGroups).
		Msg("Subscription updated")
	return dto.NewSubscriptionResponse(sub), nil
}
