package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/db"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// getOrCreateSubscriptionSQL relies on the unique user_id constraint. The
// no-op update makes a conflicting insert return the committed row.
const getOrCreateSubscriptionSQL = `
	INSERT INTO subscriptions (user_id, is_subscribed, subscribed_at)
	VALUES ($1, true, $2)
	ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id, user_id, is_subscribed, subscribed_at, unsubscribed_at`

// SubscriptionRepository handles subscription and group database operations
type SubscriptionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, sb: psql}
}

// GetOrCreate returns the user's subscription, creating it on first access
func (r *SubscriptionRepository) GetOrCreate(ctx context.Context, userID int64, now time.Time) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := r.db.QueryRow(ctx, getOrCreateSubscriptionSQL, userID, now).
		Scan(&s.ID, &s.UserID, &s.IsSubscribed, &s.SubscribedAt, &s.UnsubscribedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "subscriptions_user_id_fkey") {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting subscription: %w", err)
	}

	links, err := subscriptionGroups.load(ctx, r.db, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.GroupIDs = links[s.ID]
	return s, nil
}

// Save writes the state columns and, if asked, replaces group memberships
func (r *SubscriptionRepository) Save(ctx context.Context, s *models.Subscription, replaceGroups bool) error {
	sql, args, err := r.sb.Update("subscriptions").
		Set("is_subscribed", s.IsSubscribed).
		Set("subscribed_at", s.SubscribedAt).
		Set("unsubscribed_at", s.UnsubscribedAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update subscription query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error updating subscription: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrSubscriptionNotFound
		}
		if !replaceGroups {
			return nil
		}
		if err := subscriptionGroups.replace(ctx, tx, s.ID, s.GroupIDs); err != nil {
			if dberrors.IsForeignKeyError(err, "") {
				return apperrors.ErrGroupNotFound
			}
			return err
		}
		return nil
	})
}

// CreateGroup inserts a subscription group
func (r *SubscriptionRepository) CreateGroup(ctx context.Context, group *models.SubscriptionGroup) error {
	sql, args, err := r.sb.Insert("subscription_groups").
		Columns("name", "description").
		Values(group.Name, group.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create group query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&group.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "subscription_groups_name_key") {
			return apperrors.NewConflictError("A subscription group with this name already exists")
		}
		return fmt.Errorf("error creating subscription group: %w", err)
	}
	return nil
}

// ListGroups returns all subscription groups ordered by name
func (r *SubscriptionRepository) ListGroups(ctx context.Context) ([]*models.SubscriptionGroup, error) {
	sql, args, err := r.sb.Select("id", "name", "description").From("subscription_groups").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list groups query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subscription groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.SubscriptionGroup, 0)
	for rows.Next() {
		g := &models.SubscriptionGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("error scanning subscription group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// MissingGroupIDs returns the group ids that do not exist
func (r *SubscriptionRepository) MissingGroupIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.db, "subscription_groups", ids)
}
