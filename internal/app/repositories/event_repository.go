package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/db"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var eventColumns = []string{
	"id", "title", "description", "start_date", "end_date", "location", "created_by", "is_active",
}

// EventRepository handles event database operations
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db, sb: psql}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.CreatedByID, &e.IsActive)
	return e, err
}

// Create inserts an event with its category and newsletter links
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	sql, args, err := r.sb.Insert("events").
		Columns("title", "description", "start_date", "end_date", "location", "created_by", "is_active").
		Values(e.Title, e.Description, e.StartDate, e.EndDate, e.Location, e.CreatedByID, e.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(&e.ID); err != nil {
			return fmt.Errorf("error creating event: %w", err)
		}
		if err := eventCategories.insert(ctx, tx, e.ID, e.CategoryIDs); err != nil {
			return err
		}
		return eventNewsletters.insert(ctx, tx, e.ID, e.NewsletterIDs)
	})
}

// GetByID retrieves an event with its links
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := r.sb.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	e, err := scanEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}

	events := []*models.Event{e}
	if err := r.attachLinks(ctx, events); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns events with the given active flag, earliest start first
func (r *EventRepository) List(ctx context.Context, isActive bool) ([]*models.Event, error) {
	return r.list(ctx, squirrel.Eq{"is_active": isActive})
}

// ListUpcoming returns active events starting at or after from
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]*models.Event, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"is_active": true},
		squirrel.GtOrEq{"start_date": from},
	})
}

func (r *EventRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Event, error) {
	sql, args, err := r.sb.Select(eventColumns...).
		From("events").
		Where(where).
		OrderBy("start_date", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachLinks(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) attachLinks(ctx context.Context, events []*models.Event) error {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	categories, err := eventCategories.load(ctx, r.db, ids)
	if err != nil {
		return err
	}
	newsletters, err := eventNewsletters.load(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for _, e := range events {
		e.CategoryIDs = categories[e.ID]
		e.NewsletterIDs = newsletters[e.ID]
	}
	return nil
}
