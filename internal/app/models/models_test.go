package models

import (
	"errors"
	"testing"
	"time"
)

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"PARENT", RoleParent, false},
		{"staff", RoleStaff, false},
		{" Admin ", RoleAdmin, false},
		{"guardian", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoleCanAuthorContent(t *testing.T) {
	if RoleParent.CanAuthorContent() {
		t.Error("parent must not author content")
	}
	for _, r := range []Role{RoleStaff, RoleAdmin} {
		if !r.CanAuthorContent() {
			t.Errorf("%s should author content", r)
		}
	}
	if Role("GUEST").CanAuthorContent() {
		t.Error("unknown role must not author content")
	}
}

func TestNewsletterPublish(t *testing.T) {
	t.Run("draft is published and stamped", func(t *testing.T) {
		n := &Newsletter{Status: StatusDraft}
		changed, err := n.Publish(baseTime)
		if err != nil || !changed {
			t.Fatalf("Publish() = %v, %v", changed, err)
		}
		if n.Status != StatusPublished {
			t.Errorf("status = %s", n.Status)
		}
		if n.PublishedAt == nil || !n.PublishedAt.Equal(baseTime) {
			t.Errorf("published_at = %v", n.PublishedAt)
		}
	})

	t.Run("republish keeps the first timestamp", func(t *testing.T) {
		first := baseTime.Add(-time.Hour)
		n := &Newsletter{Status: StatusPublished, PublishedAt: &first}
		changed, err := n.Publish(baseTime)
		if err != nil || changed {
			t.Fatalf("Publish() = %v, %v", changed, err)
		}
		if !n.PublishedAt.Equal(first) {
			t.Errorf("published_at moved to %v", n.PublishedAt)
		}
	})

	t.Run("archived cannot be published", func(t *testing.T) {
		n := &Newsletter{Status: StatusArchived, PublishedAt: &baseTime}
		if _, err := n.Publish(baseTime); !errors.Is(err, ErrNewsletterArchived) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestNewsletterArchive(t *testing.T) {
	tests := []struct {
		name    string
		status  NewsletterStatus
		wantErr error
	}{
		{"published", StatusPublished, nil},
		{"draft", StatusDraft, ErrNewsletterNotPublish},
		{"archived", StatusArchived, ErrNewsletterArchived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Newsletter{Status: tt.status}
			err := n.Archive(baseTime)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Archive() err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && n.Status != StatusArchived {
				t.Errorf("status = %s", n.Status)
			}
		})
	}
}

func TestAnnouncementExpiredAt(t *testing.T) {
	past := baseTime.Add(-24 * time.Hour)
	future := baseTime.Add(24 * time.Hour)

	urgent := &Announcement{Priority: PriorityUrgent, ExpiryDate: &past}
	if !urgent.ExpiredAt(baseTime) {
		t.Error("announcement with past expiry should be expired")
	}
	if (&Announcement{ExpiryDate: &future}).ExpiredAt(baseTime) {
		t.Error("future expiry should not be expired")
	}
	if (&Announcement{}).ExpiredAt(baseTime) {
		t.Error("no expiry should never expire")
	}
}

func TestEventPastAt(t *testing.T) {
	e := &Event{StartDate: baseTime.Add(-2 * time.Hour), EndDate: baseTime.Add(-time.Hour)}
	if !e.PastAt(baseTime) {
		t.Error("ended event should be past")
	}
	e.EndDate = baseTime.Add(time.Hour)
	if e.PastAt(baseTime) {
		t.Error("running event should not be past")
	}
}

func TestSubscriptionTransitions(t *testing.T) {
	s := &Subscription{IsSubscribed: true, SubscribedAt: baseTime}

	later := baseTime.Add(time.Hour)
	if !s.SetSubscribed(false, later) {
		t.Fatal("first unsubscribe should change state")
	}
	if s.UnsubscribedAt == nil || !s.UnsubscribedAt.Equal(later) {
		t.Fatalf("unsubscribed_at = %v", s.UnsubscribedAt)
	}
	if !s.SubscribedAt.Equal(baseTime) {
		t.Errorf("subscribed_at changed to %v", s.SubscribedAt)
	}

	// a second unsubscribe keeps the first timestamp
	if s.SetSubscribed(false, later.Add(time.Hour)) {
		t.Error("second unsubscribe should be a no-op")
	}
	if !s.UnsubscribedAt.Equal(later) {
		t.Errorf("unsubscribed_at moved to %v", s.UnsubscribedAt)
	}

	resub := later.Add(2 * time.Hour)
	if !s.SetSubscribed(true, resub) {
		t.Fatal("resubscribe should change state")
	}
	if s.UnsubscribedAt != nil {
		t.Error("unsubscribed_at must be cleared on resubscribe")
	}
	if !s.SubscribedAt.Equal(resub) {
		t.Errorf("subscribed_at = %v", s.SubscribedAt)
	}
}

func TestRecipientTracking(t *testing.T) {
	r := &NewsletterRecipient{}
	if !r.MarkOpened(baseTime) {
		t.Fatal("first open should stamp")
	}
	if r.MarkOpened(baseTime.Add(time.Minute)) {
		t.Error("second open should not restamp")
	}
	if !r.OpenedAt.Equal(baseTime) {
		t.Errorf("opened_at = %v", r.OpenedAt)
	}
	if !r.MarkClicked() || r.MarkClicked() {
		t.Error("clicked should flip exactly once")
	}
}

func TestChildAgeAt(t *testing.T) {
	c := &Child{DateOfBirth: time.Date(2022, 3, 11, 0, 0, 0, 0, time.UTC)}
	if got := c.AgeAt(baseTime); got != 3 {
		t.Errorf("age the day before the birthday = %d, want 3", got)
	}
	if got := c.AgeAt(baseTime.AddDate(0, 0, 1)); got != 4 {
		t.Errorf("age on the birthday = %d, want 4", got)
	}
}

func TestUserUpdateApply(t *testing.T) {
	u := &User{FirstName: "Ana", LastName: "Ruiz", Role: RoleParent}
	name := "Anna"
	role := RoleStaff
	(&UserUpdate{FirstName: &name, Role: &role}).Apply(u)
	if u.FirstName != "Anna" || u.LastName != "Ruiz" || u.Role != RoleStaff {
		t.Errorf("unexpected user after apply: %+v", u)
	}
	if u.FullName() != "Anna Ruiz" {
		t.Errorf("FullName() = %q", u.FullName())
	}
}
