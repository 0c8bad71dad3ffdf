package services

import (
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

func boolPtr(b bool) *bool { return &b }

func TestSubscriptionLifecycle(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	start := h.clock.Now()

	sub, err := h.svc.Subscription.MySubscription(h.ctx, parent)
	assertErr(t, err, nil)
	if !sub.IsSubscribed || !sub.SubscribedAt.Equal(start) || sub.UnsubscribedAt != nil {
		t.Fatalf("first access = %+v", sub)
	}

	h.clock.Advance(time.Hour)
	off, err := h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{IsSubscribed: boolPtr(false)})
	assertErr(t, err, nil)
	if off.IsSubscribed || off.UnsubscribedAt == nil || !off.UnsubscribedAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("after unsubscribe = %+v", off)
	}
	if !off.SubscribedAt.Equal(start) {
		t.Error("unsubscribing must keep subscribedAt")
	}

	h.clock.Advance(time.Hour)
	again, err := h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{IsSubscribed: boolPtr(false)})
	assertErr(t, err, nil)
	if !again.UnsubscribedAt.Equal(start.Add(time.Hour)) {
		t.Errorf("second unsubscribe moved unsubscribedAt to %v", again.UnsubscribedAt)
	}

	h.clock.Advance(time.Hour)
	on, err := h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{IsSubscribed: boolPtr(true)})
	assertErr(t, err, nil)
	if !on.IsSubscribed || on.UnsubscribedAt != nil || !on.SubscribedAt.Equal(start.Add(3*time.Hour)) {
		t.Errorf("after resubscribe = %+v", on)
	}

	_, err = h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{})
	assertErr(t, err, apperrors.ErrValidationFailed)
	_, err = h.svc.Subscription.MySubscription(h.ctx, nil)
	assertErr(t, err, apperrors.ErrNotAuthenticated)
}

func TestSubscriptionGroups(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	staff := h.user(t, "staff@example.com", models.RoleStaff)
	admin := h.user(t, "admin@example.com", models.RoleAdmin)

	_, err := h.svc.Subscription.CreateGroup(h.ctx, staff, &dto.CreateSubscriptionGroupRequest{Name: "Toddlers"})
	assertErr(t, err, apperrors.ErrPermissionDenied)

	toddlers, err := h.svc.Subscription.CreateGroup(h.ctx, admin, &dto.CreateSubscriptionGroupRequest{Name: "Toddlers"})
	assertErr(t, err, nil)
	babies, err := h.svc.Subscription.CreateGroup(h.ctx, admin, &dto.CreateSubscriptionGroupRequest{Name: "Babies"})
	assertErr(t, err, nil)
	_, err = h.svc.Subscription.CreateGroup(h.ctx, admin, &dto.CreateSubscriptionGroupRequest{Name: "toddlers"})
	assertErr(t, err, apperrors.ErrConflict)

	groups, err := h.svc.Subscription.GetGroups(h.ctx, parent)
	assertErr(t, err, nil)
	if len(groups) != 2 || groups[0].Name != "Babies" {
		t.Errorf("groups = %+v", groups)
	}

	sub, err := h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{
		IsSubscribed: boolPtr(true),
		GroupIDs:     []int64{toddlers.ID, babies.ID},
	})
	assertErr(t, err, nil)
	if len(sub.GroupIDs) != 2 {
		t.Fatalf("groupIds = %v", sub.GroupIDs)
	}

	_, err = h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{
		IsSubscribed: boolPtr(false),
		GroupIDs:     []int64{toddlers.ID, 999},
	})
	assertErr(t, err, apperrors.ErrResourceNotFound)

	unchanged, _ := h.svc.Subscription.MySubscription(h.ctx, parent)
	if !unchanged.IsSubscribed || len(unchanged.GroupIDs) != 2 {
		t.Errorf("unknown group must change nothing, got %+v", unchanged)
	}

	cleared, err := h.svc.Subscription.UpdateSubscription(h.ctx, parent, &dto.UpdateSubscriptionRequest{
		IsSubscribed: boolPtr(true),
		GroupIDs:     []int64{},
	})
	assertErr(t, err, nil)
	if len(cleared.GroupIDs) != 0 {
		t.Errorf("empty groupIds must clear memberships, got %v", cleared.GroupIDs)
	}
}
