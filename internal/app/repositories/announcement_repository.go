package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/db"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var announcementColumns = []string{
	"id", "title", "content", "created_by", "created_at", "expiry_date", "priority", "is_active",
}

// AnnouncementRepository handles announcement database operations
type AnnouncementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: db, sb: psql}
}

func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	a := &models.Announcement{}
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedByID, &a.CreatedAt, &a.ExpiryDate, &a.Priority, &a.IsActive)
	return a, err
}

// Create inserts an announcement together with its categories
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Insert("announcements").
		Columns("title", "content", "created_by", "created_at", "expiry_date", "priority", "is_active").
		Values(a.Title, a.Content, a.CreatedByID, a.CreatedAt, a.ExpiryDate, a.Priority, a.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(&a.ID); err != nil {
			return fmt.Errorf("error creating announcement: %w", err)
		}
		return announcementCategories.insert(ctx, tx, a.ID, a.CategoryIDs)
	})
}

// GetByID retrieves an announcement with its categories
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sql, args, err := r.sb.Select(announcementColumns...).From("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	a, err := scanAnnouncement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}

	links, err := announcementCategories.load(ctx, r.db, []int64{id})
	if err != nil {
		return nil, err
	}
	a.CategoryIDs = links[id]
	return a, nil
}

// List returns announcements with the given active flag, newest first
func (r *AnnouncementRepository) List(ctx context.Context, isActive bool) ([]*models.Announcement, error) {
	sql, args, err := r.sb.Select(announcementColumns...).
		From("announcements").
		Where(squirrel.Eq{"is_active": isActive}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	announcements := make([]*models.Announcement, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning announcement: %w", err)
		}
		announcements = append(announcements, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := announcementCategories.load(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range announcements {
		a.CategoryIDs = links[a.ID]
	}
	return announcements, nil
}
