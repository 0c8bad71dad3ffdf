package models

import (
	"errors"
	"time"
)

// Lifecycle errors returned by the state transitions below
var (
	ErrNewsletterArchived   = errors.New("newsletter is archived")
	ErrNewsletterNotPublish = errors.New("only published newsletters can be archived")
)

// Category is a named tag shared by newsletters, announcements and events
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Newsletter is the main daycare communication.
// PublishedAt is nil exactly while Status is DRAFT.
type Newsletter struct {
	ID            int64            `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	Subtitle      string           `json:"subtitle" db:"subtitle"`
	Content       string           `json:"content" db:"content"`
	CoverImageURL *string          `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	CreatedByID   int64            `json:"createdById" db:"created_by"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
	PublishedAt   *time.Time       `json:"publishedAt,omitempty" db:"published_at"`
	Status        NewsletterStatus `json:"status" db:"status"`
	Featured      bool             `json:"featured" db:"featured"`
	SentToAll     bool             `json:"sentToAll" db:"sent_to_all"`
	CategoryIDs   []int64          `json:"categoryIds"`
}

// Publish moves a draft to PUBLISHED and stamps PublishedAt.
// An already published newsletter keeps its original timestamp; the returned
// bool reports whether the status changed.
func (n *Newsletter) Publish(now time.Time) (bool, error) {
	switch n.Status {
	case StatusDraft:
		n.Status = StatusPublished
		n.PublishedAt = &now
		n.UpdatedAt = now
		return true, nil
	case StatusPublished:
		return false, nil
	case StatusArchived:
		return false, ErrNewsletterArchived
	default:
		return false, ErrNewsletterArchived
	}
}

// Archive moves a published newsletter to ARCHIVED
func (n *Newsletter) Archive(now time.Time) error {
	switch n.Status {
	case StatusPublished:
		n.Status = StatusArchived
		n.UpdatedAt = now
		return nil
	case StatusArchived:
		return ErrNewsletterArchived
	default:
		return ErrNewsletterNotPublish
	}
}

// Announcement is a short, optionally expiring notice
type Announcement struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	CreatedByID int64      `json:"createdById" db:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty" db:"expiry_date"`
	Priority    Priority   `json:"priority" db:"priority"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CategoryIDs []int64    `json:"categoryIds"`
}

// ExpiredAt reports whether the announcement has expired at now.
// Announcements without an expiry date never expire.
func (a *Announcement) ExpiredAt(now time.Time) bool {
	if a.ExpiryDate == nil {
		return false
	}
	return now.After(*a.ExpiryDate)
}

// Event is a dated daycare event, optionally referenced by newsletters
type Event struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	StartDate     time.Time `json:"startDate" db:"start_date"`
	EndDate       time.Time `json:"endDate" db:"end_date"`
	Location      string    `json:"location" db:"location"`
	CreatedByID   int64     `json:"createdById" db:"created_by"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CategoryIDs   []int64   `json:"categoryIds"`
	NewsletterIDs []int64   `json:"newsletterIds"`
}

// PastAt reports whether the event ended before now
func (e *Event) PastAt(now time.Time) bool {
	return now.After(e.EndDate)
}

// NewsletterRecipient records that a newsletter was sent to a user.
// (NewsletterID, UserID) is unique.
type NewsletterRecipient struct {
	ID           int64      `json:"id" db:"id"`
	NewsletterID int64      `json:"newsletterId" db:"newsletter_id"`
	UserID       int64      `json:"userId" db:"user_id"`
	SentAt       time.Time  `json:"sentAt" db:"sent_at"`
	OpenedAt     *time.Time `json:"openedAt,omitempty" db:"opened_at"`
	Clicked      bool       `json:"clicked" db:"clicked"`
}

// MarkOpened stamps OpenedAt on the first open only
func (r *NewsletterRecipient) MarkOpened(now time.Time) bool {
	if r.OpenedAt != nil {
		return false
	}
	r.OpenedAt = &now
	return true
}

// MarkClicked sets Clicked; it never goes back to false
func (r *NewsletterRecipient) MarkClicked() bool {
	if r.Clicked {
		return false
	}
	r.Clicked = true
	return true
}
