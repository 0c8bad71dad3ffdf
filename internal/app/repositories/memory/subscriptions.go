package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

// SubscriptionRepository is the in-memory subscription and group store
type SubscriptionRepository struct{ s *Store }

// GetOrCreate returns the user's subscription, creating it on first access
func (r *SubscriptionRepository) GetOrCreate(_ context.Context, userID int64, now time.Time) (*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			sub.GroupIDs = cloneIDs(sub.GroupIDs)
			return &sub, nil
		}
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}

	sub := models.Subscription{
		ID:           r.s.next("subscriptions"),
		UserID:       userID,
		IsSubscribed: true,
		SubscribedAt: now,
	}
	r.s.subscriptions[sub.ID] = sub
	return &sub, nil
}

// Save writes the state fields and, if asked, replaces group memberships
func (r *SubscriptionRepository) Save(_ context.Context, sub *models.Subscription, replaceGroups bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.subscriptions[sub.ID]
	if !ok {
		return apperrors.ErrSubscriptionNotFound
	}
	if replaceGroups {
		if m := missing(r.s.groups, sub.GroupIDs); len(m) > 0 {
			return apperrors.ErrGroupNotFound
		}
		stored.GroupIDs = sortedIDs(sub.GroupIDs)
	}
	stored.IsSubscribed = sub.IsSubscribed
	stored.SubscribedAt = sub.SubscribedAt
	stored.UnsubscribedAt = sub.UnsubscribedAt
	r.s.subscriptions[sub.ID] = stored
	return nil
}

// CreateGroup inserts a subscription group; names are unique
func (r *SubscriptionRepository) CreateGroup(_ context.Context, group *models.SubscriptionGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, g := range r.s.groups {
		if strings.EqualFold(g.Name, group.Name) {
			return apperrors.NewConflictError("A subscription group with this name already exists")
		}
	}
	group.ID = r.s.next("subscription_groups")
	r.s.groups[group.ID] = *group
	return nil
}

// ListGroups returns all subscription groups ordered by name
func (r *SubscriptionRepository) ListGroups(_ context.Context) ([]*models.SubscriptionGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.SubscriptionGroup, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MissingGroupIDs returns the group ids that do not exist
func (r *SubscriptionRepository) MissingGroupIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return missing(r.s.groups, ids), nil
}
