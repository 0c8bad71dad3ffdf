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
	"github.com/brightnest/daycare/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var newsletterColumns = []string{
	"id", "title", "subtitle", "content", "cover_image_url", "created_by", "created_at",
	"updated_at", "published_at", "status", "featured", "sent_to_all",
}

// fanOutSQL adds a recipient row for every active subscriber lacking one
const fanOutSQL = `
	INSERT INTO newsletter_recipients (newsletter_id, user_id, sent_at, clicked)
	SELECT $1, s.user_id, $2, false
	FROM subscriptions s
	WHERE s.is_subscribed = true
	ON CONFLICT (newsletter_id, user_id) DO NOTHING`

// NewsletterRepository handles newsletter and recipient database operations
type NewsletterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNewsletterRepository creates a new NewsletterRepository
func NewNewsletterRepository(db *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{db: db, sb: psql}
}

func scanNewsletter(row pgx.Row) (*models.Newsletter, error) {
	n := &models.Newsletter{}
	err := row.Scan(&n.ID, &n.Title, &n.Subtitle, &n.Content, &n.CoverImageURL, &n.CreatedByID, &n.CreatedAt,
		&n.UpdatedAt, &n.PublishedAt, &n.Status, &n.Featured, &n.SentToAll)
	return n, err
}

// Create inserts a newsletter together with its categories
func (r *NewsletterRepository) Create(ctx context.Context, newsletter *models.Newsletter) error {
	sql, args, err := r.sb.Insert("newsletters").
		Columns("title", "subtitle", "content", "cover_image_url", "created_by", "created_at",
			"updated_at", "published_at", "status", "featured", "sent_to_all").
		Values(newsletter.Title, newsletter.Subtitle, newsletter.Content, newsletter.CoverImageURL,
			newsletter.CreatedByID, newsletter.CreatedAt, newsletter.UpdatedAt, newsletter.PublishedAt,
			newsletter.Status, newsletter.Featured, newsletter.SentToAll).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create newsletter query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(&newsletter.ID); err != nil {
			return fmt.Errorf("error creating newsletter: %w", err)
		}
		return newsletterCategories.insert(ctx, tx, newsletter.ID, newsletter.CategoryIDs)
	})
}

// GetByID retrieves a newsletter with its categories
func (r *NewsletterRepository) GetByID(ctx context.Context, id int64) (*models.Newsletter, error) {
	sql, args, err := r.sb.Select(newsletterColumns...).From("newsletters").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get newsletter query: %w", err)
	}

	n, err := scanNewsletter(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNewsletterNotFound
		}
		return nil, fmt.Errorf("error retrieving newsletter: %w", err)
	}

	links, err := newsletterCategories.load(ctx, r.db, []int64{id})
	if err != nil {
		return nil, err
	}
	n.CategoryIDs = links[id]
	return n, nil
}

// List returns newsletters matching filter, newest first
func (r *NewsletterRepository) List(ctx context.Context, filter NewsletterFilter) ([]*models.Newsletter, error) {
	query := r.sb.Select(newsletterColumns...).From("newsletters").OrderBy("created_at DESC", "id DESC")
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.FeaturedOnly {
		query = query.Where(squirrel.Eq{"featured": true})
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list newsletters query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing newsletters: %w", err)
	}
	defer rows.Close()

	newsletters := make([]*models.Newsletter, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning newsletter: %w", err)
		}
		newsletters = append(newsletters, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := newsletterCategories.load(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range newsletters {
		n.CategoryIDs = links[n.ID]
	}
	return newsletters, nil
}

// MissingIDs returns the newsletter ids that do not exist
func (r *NewsletterRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.db, "newsletters", ids)
}

// SavePublication writes the lifecycle columns and optionally fans out to subscribers
func (r *NewsletterRepository) SavePublication(ctx context.Context, newsletter *models.Newsletter, fanOut bool, sentAt time.Time) (int64, error) {
	sql, args, err := r.sb.Update("newsletters").
		Set("status", newsletter.Status).
		Set("published_at", newsletter.PublishedAt).
		Set("sent_to_all", newsletter.SentToAll).
		Set("updated_at", newsletter.UpdatedAt).
		Where(squirrel.Eq{"id": newsletter.ID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build publish newsletter query: %w", err)
	}

	var added int64
	err = db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error updating newsletter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNewsletterNotFound
		}
		if !fanOut {
			return nil
		}

		tag, err = tx.Exec(ctx, fanOutSQL, newsletter.ID, sentAt)
		if err != nil {
			return fmt.Errorf("error creating newsletter recipients: %w", err)
		}
		added = tag.RowsAffected()
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("newsletterID", newsletter.ID).Msg("Error saving newsletter publication")
		return 0, err
	}
	return added, nil
}

// UpdateCover sets the cover image URL
func (r *NewsletterRepository) UpdateCover(ctx context.Context, id int64, coverURL string, updatedAt time.Time) error {
	sql, args, err := r.sb.Update("newsletters").
		Set("cover_image_url", coverURL).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update cover query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating newsletter cover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNewsletterNotFound
	}
	return nil
}

var recipientColumns = []string{"id", "newsletter_id", "user_id", "sent_at", "opened_at", "clicked"}

func scanRecipient(row pgx.Row) (*models.NewsletterRecipient, error) {
	rec := &models.NewsletterRecipient{}
	err := row.Scan(&rec.ID, &rec.NewsletterID, &rec.UserID, &rec.SentAt, &rec.OpenedAt, &rec.Clicked)
	return rec, err
}

// GetRecipient retrieves the delivery record of a newsletter for a user
func (r *NewsletterRepository) GetRecipient(ctx context.Context, newsletterID, userID int64) (*models.NewsletterRecipient, error) {
	sql, args, err := r.sb.Select(recipientColumns...).
		From("newsletter_recipients").
		Where(squirrel.Eq{"newsletter_id": newsletterID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get recipient query: %w", err)
	}

	rec, err := scanRecipient(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("error retrieving recipient: %w", err)
	}
	return rec, nil
}

// UpdateRecipient writes the tracking columns. opened_at is only ever set
// once and clicked never flips back, whatever the caller passes.
func (r *NewsletterRepository) UpdateRecipient(ctx context.Context, recipient *models.NewsletterRecipient) error {
	sql, args, err := r.sb.Update("newsletter_recipients").
		Set("opened_at", squirrel.Expr("COALESCE(opened_at, ?)", recipient.OpenedAt)).
		Set("clicked", squirrel.Expr("clicked OR ?", recipient.Clicked)).
		Where(squirrel.Eq{"id": recipient.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update recipient query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating recipient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRecipientNotFound
	}
	return nil
}

// ListRecipients returns the delivery records of a newsletter
func (r *NewsletterRepository) ListRecipients(ctx context.Context, newsletterID int64) ([]*models.NewsletterRecipient, error) {
	sql, args, err := r.sb.Select(recipientColumns...).
		From("newsletter_recipients").
		Where(squirrel.Eq{"newsletter_id": newsletterID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list recipients query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]*models.NewsletterRecipient, 0)
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}
