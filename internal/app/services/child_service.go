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
	"github.com/brightnest/daycare/internal/pkg/helpers"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/brightnest/daycare/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// ChildService defines the interface for children records
type ChildService interface {
	CreateChild(ctx context.Context, actor *models.User, req *dto.CreateChildRequest) (*dto.ChildResponse, error)
	GetChildren(ctx context.Context, actor *models.User) ([]*dto.ChildResponse, error)
	GetChild(ctx context.Context, actor *models.User, id int64) (*dto.ChildResponse, error)
}

// childServiceImpl implements ChildService
type childServiceImpl struct {
	childRepo    repositories.IChildRepository
	authzService *auth.AuthorizationService
	metrics      *metrics.Metrics
	now          func() time.Time
	logger       zerolog.Logger
}

// NewChildService creates a new ChildService
func NewChildService(
	childRepo repositories.IChildRepository,
	authzService *auth.AuthorizationService,
	m *metrics.Metrics,
	now func() time.Time,
	logger zerolog.Logger,
) ChildService {
	return &childServiceImpl{
		childRepo:    childRepo,
		authzService: authzService,
		metrics:      m,
		now:          now,
		logger:       logger,
	}
}

// CreateChild adds a child record under a PARENT account
func (s *childServiceImpl) CreateChild(ctx context.Context, actor *models.User, req *dto.CreateChildRequest) (*dto.ChildResponse, error) {
	parent, err := s.authzService.ValidateChildCreation(ctx, actor, req.ParentID)
	if err != nil {
		return nil, err
	}

	if err := validation.First(
		validation.Name("firstName", req.FirstName, true),
		validation.Name("lastName", req.LastName, true),
	); err != nil {
		return nil, err
	}

	dob, err := helpers.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewValidationError("dateOfBirth", "Date of birth must be formatted as YYYY-MM-DD")
	}
	now := s.now()
	if dob.After(now) {
		return nil, apperrors.NewValidationError("dateOfBirth", "Date of birth cannot be in the future")
	}

	child := &models.Child{
		ParentID:     parent.ID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		DateOfBirth:  dob,
		Allergies:    req.Allergies,
		MedicalNotes: req.MedicalNotes,
		Group:        req.Group,
		CreatedAt:    now,
	}
	if err := s.childRepo.Create(ctx, child); err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "Parent user not found")
	}
	s.metrics.ContentCreated("child")

	s.logger.Info().
		Int64("childID", child.ID).
		Int64("parentID", parent.ID).
		Int64("actorID", actor.ID).
		Msg("Child created")
	return dto.NewChildResponse(child, now), nil
}

// GetChildren returns every child to STAFF and ADMIN and a parent's own children otherwise
func (s *childServiceImpl) GetChildren(ctx context.Context, actor *models.User) ([]*dto.ChildResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var parentID *int64
	if !actor.Role.Elevated() {
		parentID = &actor.ID
	}
	children, err := s.childRepo.List(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	now := s.now()
	out := make([]*dto.ChildResponse, 0, len(children))
	for _, c := range children {
		out = append(out, dto.NewChildResponse(c, now))
	}
	return out, nil
}

// GetChild returns one child; a parent asking for someone else's child gets NotFound
func (s *childServiceImpl) GetChild(ctx context.Context, actor *models.User, id int64) (*dto.ChildResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	child, err := s.childRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrChildNotFound, "Child not found")
	}
	if !auth.CanViewChild(actor, child) {
		return nil, apperrors.NewResourceNotFoundError("Child not found")
	}
	return dto.NewChildResponse(child, s.now()), nil
}
