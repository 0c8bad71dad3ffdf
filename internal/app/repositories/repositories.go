package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// IChildRepository defines the interface for children records
type IChildRepository interface {
	Create(ctx context.Context, child *models.Child) error
	GetByID(ctx context.Context, id int64) (*models.Child, error)
	// List returns every child when parentID is nil
	List(ctx context.Context, parentID *int64) ([]*models.Child, error)
}

// ICategoryRepository defines the interface for categories
type ICategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	// MissingIDs returns the ids of ids that do not exist
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// NewsletterFilter narrows a newsletter listing. A zero Status matches every status.
type NewsletterFilter struct {
	Status       models.NewsletterStatus
	FeaturedOnly bool
}

// INewsletterRepository defines the interface for newsletters and their delivery records
type INewsletterRepository interface {
	Create(ctx context.Context, newsletter *models.Newsletter) error
	GetByID(ctx context.Context, id int64) (*models.Newsletter, error)
	List(ctx context.Context, filter NewsletterFilter) ([]*models.Newsletter, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
	// SavePublication persists the lifecycle fields of newsletter and, when
	// fanOut is set, adds a recipient row for every active subscriber that has
	// none yet. Both happen atomically; the number of new rows is returned.
	SavePublication(ctx context.Context, newsletter *models.Newsletter, fanOut bool, sentAt time.Time) (int64, error)
	UpdateCover(ctx context.Context, id int64, coverURL string, updatedAt time.Time) error

	GetRecipient(ctx context.Context, newsletterID, userID int64) (*models.NewsletterRecipient, error)
	UpdateRecipient(ctx context.Context, recipient *models.NewsletterRecipient) error
	ListRecipients(ctx context.Context, newsletterID int64) ([]*models.NewsletterRecipient, error)
}

// IAnnouncementRepository defines the interface for announcements
type IAnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	List(ctx context.Context, isActive bool) ([]*models.Announcement, error)
}

// IEventRepository defines the interface for events
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, isActive bool) ([]*models.Event, error)
	// ListUpcoming returns active events starting at or after from
	ListUpcoming(ctx context.Context, from time.Time) ([]*models.Event, error)
}

// ISubscriptionRepository defines the interface for subscriptions and groups
type ISubscriptionRepository interface {
	// GetOrCreate returns the user's subscription, creating a subscribed one on first access
	GetOrCreate(ctx context.Context, userID int64, now time.Time) (*models.Subscription, error)
	// Save persists the subscription state; when replaceGroups is set the
	// memberships are replaced by subscription.GroupIDs in the same transaction.
	Save(ctx context.Context, subscription *models.Subscription, replaceGroups bool) error

	CreateGroup(ctx context.Context, group *models.SubscriptionGroup) error
	ListGroups(ctx context.Context) ([]*models.SubscriptionGroup, error)
	MissingGroupIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// ITokenRepository defines the interface for refresh tokens
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         IUserRepository
	ChildRepository        IChildRepository
	CategoryRepository     ICategoryRepository
	NewsletterRepository   INewsletterRepository
	AnnouncementRepository IAnnouncementRepository
	EventRepository        IEventRepository
	SubscriptionRepository ISubscriptionRepository
	TokenRepository        ITokenRepository
}

// NewRepositories initializes all PostgreSQL repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(pool),
		ChildRepository:        NewChildRepository(pool),
		CategoryRepository:     NewCategoryRepository(pool),
		NewsletterRepository:   NewNewsletterRepository(pool),
		AnnouncementRepository: NewAnnouncementRepository(pool),
		EventRepository:        NewEventRepository(pool),
		SubscriptionRepository: NewSubscriptionRepository(pool),
		TokenRepository:        NewTokenRepository(pool),
	}
}

// psql is the statement builder shared by the PostgreSQL repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
