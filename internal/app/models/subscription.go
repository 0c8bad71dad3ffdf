package models

import "time"

// SubscriptionGroup is a named group of newsletter subscribers
type SubscriptionGroup struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Subscription is the single newsletter opt-in row of a user.
// UnsubscribedAt is set only while IsSubscribed is false.
type Subscription struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"userId" db:"user_id"`
	IsSubscribed   bool       `json:"isSubscribed" db:"is_subscribed"`
	SubscribedAt   time.Time  `json:"subscribedAt" db:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty" db:"unsubscribed_at"`
	GroupIDs       []int64    `json:"groupIds"`
}

// Unsubscribe opts the user out and stamps UnsubscribedAt.
// SubscribedAt keeps its last value.
func (s *Subscription) Unsubscribe(now time.Time) {
	s.IsSubscribed = false
	s.UnsubscribedAt = &now
}

// Resubscribe opts the user back in, stamps SubscribedAt and clears UnsubscribedAt
func (s *Subscription) Resubscribe(now time.Time) {
	s.IsSubscribed = true
	s.SubscribedAt = now
	s.UnsubscribedAt = nil
}

// SetSubscribed transitions to the wanted state. It is a no-op, without any
// timestamp refresh, when the subscription is already there.
func (s *Subscription) SetSubscribed(want bool, now time.Time) bool {
	if s.IsSubscribed == want {
		return false
	}
	if want {
		s.Resubscribe(now)
	} else {
		s.Unsubscribe(now)
	}
	return true
}
