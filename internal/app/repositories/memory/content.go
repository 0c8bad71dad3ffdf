package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

// CategoryRepository is the in-memory category store
type CategoryRepository struct{ s *Store }

// Create inserts a category; names are unique
func (r *CategoryRepository) Create(_ context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return apperrors.NewConflictError("A category with this name already exists")
		}
	}
	category.ID = r.s.next("categories")
	r.s.categories[category.ID] = *category
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return &c, nil
}

// List returns all categories ordered by name
func (r *CategoryRepository) List(_ context.Context) ([]*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MissingIDs returns the category ids that do not exist
func (r *CategoryRepository) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return missing(r.s.categories, ids), nil
}

// NewsletterRepository is the in-memory newsletter and recipient store
type NewsletterRepository struct{ s *Store }

func (r *NewsletterRepository) copyOf(n models.Newsletter) *models.Newsletter {
	n.CategoryIDs = cloneIDs(n.CategoryIDs)
	return &n
}

// Create inserts a newsletter
func (r *NewsletterRepository) Create(_ context.Context, newsletter *models.Newsletter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m := missing(r.s.categories, newsletter.CategoryIDs); len(m) > 0 {
		return apperrors.ErrCategoryNotFound
	}
	newsletter.ID = r.s.next("newsletters")
	stored := *newsletter
	stored.CategoryIDs = sortedIDs(newsletter.CategoryIDs)
	r.s.newsletters[newsletter.ID] = stored
	return nil
}

// GetByID retrieves a newsletter
func (r *NewsletterRepository) GetByID(_ context.Context, id int64) (*models.Newsletter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.newsletters[id]
	if !ok {
		return nil, apperrors.ErrNewsletterNotFound
	}
	return r.copyOf(n), nil
}

// List returns newsletters matching filter, newest first
func (r *NewsletterRepository) List(_ context.Context, filter repositories.NewsletterFilter) ([]*models.Newsletter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Newsletter, 0)
	for _, n := range r.s.newsletters {
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.FeaturedOnly && !n.Featured {
			continue
		}
		out = append(out, r.copyOf(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MissingIDs returns the newsletter ids that do not exist
func (r *NewsletterRepository) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return missing(r.s.newsletters, ids), nil
}

// SavePublication writes the lifecycle fields and optionally fans out, under one lock
func (r *NewsletterRepository) SavePublication(_ context.Context, newsletter *models.Newsletter, fanOut bool, sentAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.newsletters[newsletter.ID]
	if !ok {
		return 0, apperrors.ErrNewsletterNotFound
	}
	stored.Status = newsletter.Status
	stored.PublishedAt = newsletter.PublishedAt
	stored.SentToAll = newsletter.SentToAll
	stored.UpdatedAt = newsletter.UpdatedAt
	r.s.newsletters[newsletter.ID] = stored

	if !fanOut {
		return 0, nil
	}

	var added int64
	for _, sub := range r.s.subscriptions {
		if !sub.IsSubscribed {
			continue
		}
		key := recipientKey{newsletterID: newsletter.ID, userID: sub.UserID}
		if _, exists := r.s.recipients[key]; exists {
			continue
		}
		r.s.recipients[key] = models.NewsletterRecipient{
			ID:           r.s.next("newsletter_recipients"),
			NewsletterID: newsletter.ID,
			UserID:       sub.UserID,
			SentAt:       sentAt,
		}
		added++
	}
	return added, nil
}

// UpdateCover sets the cover image URL
func (r *NewsletterRepository) UpdateCover(_ context.Context, id int64, coverURL string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.newsletters[id]
	if !ok {
		return apperrors.ErrNewsletterNotFound
	}
	n.CoverImageURL = &coverURL
	n.UpdatedAt = updatedAt
	r.s.newsletters[id] = n
	return nil
}

// GetRecipient retrieves the delivery record of a newsletter for a user
func (r *NewsletterRepository) GetRecipient(_ context.Context, newsletterID, userID int64) (*models.NewsletterRecipient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.recipients[recipientKey{newsletterID: newsletterID, userID: userID}]
	if !ok {
		return nil, apperrors.ErrRecipientNotFound
	}
	return &rec, nil
}

// UpdateRecipient writes the tracking fields without ever unsetting them
func (r *NewsletterRepository) UpdateRecipient(_ context.Context, recipient *models.NewsletterRecipient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := recipientKey{newsletterID: recipient.NewsletterID, userID: recipient.UserID}
	stored, ok := r.s.recipients[key]
	if !ok {
		return apperrors.ErrRecipientNotFound
	}
	if stored.OpenedAt == nil {
		stored.OpenedAt = recipient.OpenedAt
	}
	stored.Clicked = stored.Clicked || recipient.Clicked
	r.s.recipients[key] = stored
	return nil
}

// ListRecipients returns the delivery records of a newsletter
func (r *NewsletterRepository) ListRecipients(_ context.Context, newsletterID int64) ([]*models.NewsletterRecipient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.NewsletterRecipient, 0)
	for key, rec := range r.s.recipients {
		if key.newsletterID == newsletterID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// AnnouncementRepository is the in-memory announcement store
type AnnouncementRepository struct{ s *Store }

// Create inserts an announcement
func (r *AnnouncementRepository) Create(_ context.Context, a *models.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m := missing(r.s.categories, a.CategoryIDs); len(m) > 0 {
		return apperrors.ErrCategoryNotFound
	}
	a.ID = r.s.next("announcements")
	stored := *a
	stored.CategoryIDs = sortedIDs(a.CategoryIDs)
	r.s.announcements[a.ID] = stored
	return nil
}

// GetByID retrieves an announcement
func (r *AnnouncementRepository) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.announcements[id]
	if !ok {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	a.CategoryIDs = cloneIDs(a.CategoryIDs)
	return &a, nil
}

// List returns announcements with the given active flag, newest first
func (r *AnnouncementRepository) List(_ context.Context, isActive bool) ([]*models.Announcement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Announcement, 0)
	for _, a := range r.s.announcements {
		if a.IsActive != isActive {
			continue
		}
		a := a
		a.CategoryIDs = cloneIDs(a.CategoryIDs)
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// EventRepository is the in-memory event store
type EventRepository struct{ s *Store }

// Create inserts an event
func (r *EventRepository) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m := missing(r.s.categories, e.CategoryIDs); len(m) > 0 {
		return apperrors.ErrCategoryNotFound
	}
	if m := missing(r.s.newsletters, e.NewsletterIDs); len(m) > 0 {
		return apperrors.ErrNewsletterNotFound
	}
	e.ID = r.s.next("events")
	stored := *e
	stored.CategoryIDs = sortedIDs(e.CategoryIDs)
	stored.NewsletterIDs = sortedIDs(e.NewsletterIDs)
	r.s.events[e.ID] = stored
	return nil
}

// GetByID retrieves an event
func (r *EventRepository) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return copyEvent(e), nil
}

// List returns events with the given active flag, earliest start first
func (r *EventRepository) List(_ context.Context, isActive bool) ([]*models.Event, error) {
	return r.list(func(e models.Event) bool { return e.IsActive == isActive }), nil
}

// ListUpcoming returns active events starting at or after from
func (r *EventRepository) ListUpcoming(_ context.Context, from time.Time) ([]*models.Event, error) {
	return r.list(func(e models.Event) bool {
		return e.IsActive && !e.StartDate.Before(from)
	}), nil
}

func (r *EventRepository) list(keep func(models.Event) bool) []*models.Event {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Event, 0)
	for _, e := range r.s.events {
		if keep(e) {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copyEvent(e models.Event) *models.Event {
	e.CategoryIDs = cloneIDs(e.CategoryIDs)
	e.NewsletterIDs = cloneIDs(e.NewsletterIDs)
	return &e
}
