package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// CategoryService defines the interface for content categories
type CategoryService interface {
	CreateCategory(ctx context.Context, actor *models.User, req *dto.CreateCategoryRequest) (*models.Category, error)
	GetCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
}

// categoryServiceImpl implements CategoryService
type categoryServiceImpl struct {
	categoryRepo repositories.ICategoryRepository
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repositories.ICategoryRepository, m *metrics.Metrics, logger zerolog.Logger) CategoryService {
	return &categoryServiceImpl{
		categoryRepo: categoryRepo,
		metrics:      m,
		logger:       logger,
	}
}

// CreateCategory adds a category; STAFF and ADMIN only
func (s *categoryServiceImpl) CreateCategory(ctx context.Context, actor *models.User, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if err := auth.ValidateContentAuthor(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "Name is required")
	}

	category := &models.Category{Name: name, Description: req.Description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.metrics.ContentCreated("category")

	s.logger.Info().Int64("categoryID", category.ID).Str("name", category.Name).Msg("Category created")
	return category, nil
}

// GetCategories lists all categories
func (s *categoryServiceImpl) GetCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns one category
func (s *categoryServiceImpl) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrCategoryNotFound, "Category not found")
	}
	return category, nil
}
