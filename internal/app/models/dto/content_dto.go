package dto

import (
	"time"

	"github.com/brightnest/daycare/internal/app/models"
)

// CreateCategoryRequest represents category creation data
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// CreateNewsletterRequest represents newsletter creation data
type CreateNewsletterRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Subtitle    string  `json:"subtitle" binding:"max=300"`
	Content     string  `json:"content" binding:"required"`
	Status      string  `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Featured    bool    `json:"featured"`
	CategoryIDs []int64 `json:"categoryIds" binding:"omitempty,dive,gt=0"`
}

// PublishNewsletterRequest represents the publish mutation arguments
type PublishNewsletterRequest struct {
	SendToAll bool `json:"sendToAll"`
}

// NewsletterResponse represents a newsletter returned to clients
type NewsletterResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle"`
	Content       string     `json:"content"`
	CoverImageURL *string    `json:"coverImageUrl,omitempty"`
	CreatedByID   int64      `json:"createdById"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PublishedAt   *time.Time `json:"publishedAt"`
	Status        string     `json:"status"`
	Featured      bool       `json:"featured"`
	SentToAll     bool       `json:"sentToAll"`
	CategoryIDs   []int64    `json:"categoryIds"`
}

// NewNewsletterResponse maps a newsletter model
func NewNewsletterResponse(n *models.Newsletter) *NewsletterResponse {
	if n == nil {
		return nil
	}
	return &NewsletterResponse{
		ID:            n.ID,
		Title:         n.Title,
		Subtitle:      n.Subtitle,
		Content:       n.Content,
		CoverImageURL: n.CoverImageURL,
		CreatedByID:   n.CreatedByID,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		PublishedAt:   n.PublishedAt,
		Status:        string(n.Status),
		Featured:      n.Featured,
		SentToAll:     n.SentToAll,
		CategoryIDs:   nonNilIDs(n.CategoryIDs),
	}
}

// NewNewsletterListResponse maps a list of newsletters
func NewNewsletterListResponse(items []*models.Newsletter) []*NewsletterResponse {
	out := make([]*NewsletterResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NewNewsletterResponse(n))
	}
	return out
}

// PublishNewsletterResponse reports the publish outcome
type PublishNewsletterResponse struct {
	Newsletter      *NewsletterResponse `json:"newsletter"`
	RecipientsAdded int64               `json:"recipientsAdded"`
}

// RecipientResponse represents a newsletter delivery record
type RecipientResponse struct {
	NewsletterID int64      `json:"newsletterId"`
	UserID       int64      `json:"userId"`
	SentAt       time.Time  `json:"sentAt"`
	OpenedAt     *time.Time `json:"openedAt"`
	Clicked      bool       `json:"clicked"`
}

// NewRecipientResponse maps a recipient model
func NewRecipientResponse(r *models.NewsletterRecipient) *RecipientResponse {
	if r == nil {
		return nil
	}
	return &RecipientResponse{
		NewsletterID: r.NewsletterID,
		UserID:       r.UserID,
		SentAt:       r.SentAt,
		OpenedAt:     r.OpenedAt,
		Clicked:      r.Clicked,
	}
}

// NewRecipientListResponse maps recipient models
func NewRecipientListResponse(recipients []*models.NewsletterRecipient) []*RecipientResponse {
	out := make([]*RecipientResponse, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, NewRecipientResponse(r))
	}
	return out
}

// CreateAnnouncementRequest represents announcement creation data
type CreateAnnouncementRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Content     string     `json:"content" binding:"required"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	IsActive    *bool      `json:"isActive"`
	CategoryIDs []int64    `json:"categoryIds" binding:"omitempty,dive,gt=0"`
}

// AnnouncementResponse represents an announcement with its derived expiry flag
type AnnouncementResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	CreatedByID int64      `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Priority    string     `json:"priority"`
	IsActive    bool       `json:"isActive"`
	IsExpired   bool       `json:"isExpired"`
	CategoryIDs []int64    `json:"categoryIds"`
}

// NewAnnouncementResponse maps an announcement model
func NewAnnouncementResponse(a *models.Announcement, now time.Time) *AnnouncementResponse {
	if a == nil {
		return nil
	}
	return &AnnouncementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		CreatedByID: a.CreatedByID,
		CreatedAt:   a.CreatedAt,
		ExpiryDate:  a.ExpiryDate,
		Priority:    string(a.Priority),
		IsActive:    a.IsActive,
		IsExpired:   a.ExpiredAt(now),
		CategoryIDs: nonNilIDs(a.CategoryIDs),
	}
}

// CreateEventRequest represents event creation data
type CreateEventRequest struct {
	Title         string    `json:"title" binding:"required,max=200"`
	Description   string    `json:"description" binding:"required"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	Location      string    `json:"location" binding:"omitempty,max=200"`
	IsActive      *bool     `json:"isActive"`
	CategoryIDs   []int64   `json:"categoryIds" binding:"omitempty,dive,gt=0"`
	NewsletterIDs []int64   `json:"newsletterIds" binding:"omitempty,dive,gt=0"`
}

// EventResponse represents an event with its derived past flag
type EventResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Location      string    `json:"location"`
	CreatedByID   int64     `json:"createdById"`
	IsActive      bool      `json:"isActive"`
	IsPast        bool      `json:"isPast"`
	CategoryIDs   []int64   `json:"categoryIds"`
	NewsletterIDs []int64   `json:"newsletterIds"`
}

// NewEventResponse maps an event model
func NewEventResponse(e *models.Event, now time.Time) *EventResponse {
	if e == nil {
		return nil
	}
	return &EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		Location:      e.Location,
		CreatedByID:   e.CreatedByID,
		IsActive:      e.IsActive,
		IsPast:        e.PastAt(now),
		CategoryIDs:   nonNilIDs(e.CategoryIDs),
		NewsletterIDs: nonNilIDs(e.NewsletterIDs),
	}
}

// CoverUploadResponse reports the stored cover image
type CoverUploadResponse struct {
	CoverImageURL string `json:"coverImageUrl"`
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
