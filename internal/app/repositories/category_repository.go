package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db, sb: psql}
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	sql, args, err := r.sb.Insert("categories").
		Columns("name", "description").
		Values(category.Name, category.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create category query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&category.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "categories_name_key") {
			return apperrors.NewConflictError("A category with this name already exists")
		}
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	sql, args, err := r.sb.Select("id", "name", "description").From("categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get category query: %w", err)
	}

	c := &models.Category{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error retrieving category: %w", err)
	}
	return c, nil
}

// List returns all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	sql, args, err := r.sb.Select("id", "name", "description").From("categories").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list categories query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// MissingIDs returns the category ids that do not exist
func (r *CategoryRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.db, "categories", ids)
}
