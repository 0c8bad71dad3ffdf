package dto

import (
	"time"

	"github.com/brightnest/daycare/internal/app/models"
)

// CreateSubscriptionGroupRequest represents subscription group creation data
type CreateSubscriptionGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// UpdateSubscriptionRequest changes the caller's subscription.
// A nil GroupIDs leaves memberships untouched; an empty list clears them.
type UpdateSubscriptionRequest struct {
	IsSubscribed *bool   `json:"isSubscribed" binding:"required"`
	GroupIDs     []int64 `json:"groupIds" binding:"omitempty,dive,gt=0"`
}

// SubscriptionResponse represents a user's subscription
type SubscriptionResponse struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	IsSubscribed   bool       `json:"isSubscribed"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt"`
	GroupIDs       []int64    `json:"groupIds"`
}

// NewSubscriptionResponse maps a subscription model
func NewSubscriptionResponse(s *models.Subscription) *SubscriptionResponse {
	if s == nil {
		return nil
	}
	return &SubscriptionResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		IsSubscribed:   s.IsSubscribed,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
		GroupIDs:       nonNilIDs(s.GroupIDs),
	}
}
