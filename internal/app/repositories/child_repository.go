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

var childColumns = []string{
	"id", "parent_id", "first_name", "last_name", "date_of_birth", "allergies",
	"medical_notes", "group_label", "photo_url", "created_at",
}

// ChildRepository handles children database operations
type ChildRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChildRepository creates a new ChildRepository
func NewChildRepository(db *pgxpool.Pool) *ChildRepository {
	return &ChildRepository{db: db, sb: psql}
}

func scanChild(row pgx.Row) (*models.Child, error) {
	c := &models.Child{}
	err := row.Scan(&c.ID, &c.ParentID, &c.FirstName, &c.LastName, &c.DateOfBirth, &c.Allergies,
		&c.MedicalNotes, &c.Group, &c.PhotoURL, &c.CreatedAt)
	return c, err
}

// Create inserts a child record
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	sql, args, err := r.sb.Insert("children").
		Columns("parent_id", "first_name", "last_name", "date_of_birth", "allergies",
			"medical_notes", "group_label", "photo_url", "created_at").
		Values(child.ParentID, child.FirstName, child.LastName, child.DateOfBirth, child.Allergies,
			child.MedicalNotes, child.Group, child.PhotoURL, child.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create child query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&child.ID); err != nil {
		if dberrors.IsForeignKeyError(err, "children_parent_id_fkey") {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating child: %w", err)
	}
	return nil
}

// GetByID retrieves a child by ID
func (r *ChildRepository) GetByID(ctx context.Context, id int64) (*models.Child, error) {
	sql, args, err := r.sb.Select(childColumns...).From("children").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get child query: %w", err)
	}

	child, err := scanChild(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChildNotFound
		}
		return nil, fmt.Errorf("error retrieving child: %w", err)
	}
	return child, nil
}

// List returns children, restricted to one parent when parentID is set
func (r *ChildRepository) List(ctx context.Context, parentID *int64) ([]*models.Child, error) {
	query := r.sb.Select(childColumns...).From("children").OrderBy("last_name", "first_name", "id")
	if parentID != nil {
		query = query.Where(squirrel.Eq{"parent_id": *parentID})
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list children query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing children: %w", err)
	}
	defer rows.Close()

	children := make([]*models.Child, 0)
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning child: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}
