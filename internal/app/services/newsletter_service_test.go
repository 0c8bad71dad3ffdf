package services

import (
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/messaging"
)

func draftRequest(title string) *dto.CreateNewsletterRequest {
	return &dto.CreateNewsletterRequest{Title: title, Content: "Body of " + title}
}

func TestCreateNewsletterByRole(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	staff := h.user(t, "staff@example.com", models.RoleStaff)
	admin := h.user(t, "admin@example.com", models.RoleAdmin)

	tests := []struct {
		name  string
		actor *models.User
		want  error
	}{
		{"anonymous", nil, apperrors.ErrNotAuthenticated},
		{"parent", parent, apperrors.ErrPermissionDenied},
		{"staff", staff, nil},
		{"admin", admin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.svc.Newsletter.CreateNewsletter(h.ctx, tt.actor, draftRequest("Weekly"))
			assertErr(t, err, tt.want)
			if tt.want == nil {
				if resp.Status != "DRAFT" || resp.PublishedAt != nil || resp.CreatedByID != tt.actor.ID {
					t.Errorf("unexpected newsletter %+v", resp)
				}
			}
		})
	}
}

func TestCreateNewsletterStatus(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff@example.com", models.RoleStaff)

	req := draftRequest("Live now")
	req.Status = "PUBLISHED"
	resp, err := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, req)
	assertErr(t, err, nil)
	if resp.PublishedAt == nil || !resp.PublishedAt.Equal(h.clock.Now()) {
		t.Errorf("published newsletter needs published_at, got %v", resp.PublishedAt)
	}
	if resp.SentToAll {
		t.Error("creating as published must not send")
	}

	req = draftRequest("Old")
	req.Status = "ARCHIVED"
	_, err = h.svc.Newsletter.CreateNewsletter(h.ctx, staff, req)
	assertErr(t, err, apperrors.ErrValidationFailed)

	req = draftRequest("Tagged")
	req.CategoryIDs = []int64{404}
	_, err = h.svc.Newsletter.CreateNewsletter(h.ctx, staff, req)
	assertErr(t, err, apperrors.ErrResourceNotFound)
}

func TestNewsletterListingVisibility(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	staff := h.user(t, "staff@example.com", models.RoleStaff)

	draft, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, draftRequest("Draft"))
	h.clock.Advance(time.Minute)
	published, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, draftRequest("Published"))
	if _, err := h.svc.Newsletter.PublishNewsletter(h.ctx, staff, published.ID, false); err != nil {
		t.Fatal(err)
	}

	list, err := h.svc.Newsletter.GetNewsletters(h.ctx, nil, "")
	assertErr(t, err, nil)
	if len(list) != 1 || list[0].ID != published.ID {
		t.Fatalf("default listing should only hold the published newsletter, got %d items", len(list))
	}

	drafts, _ := h.svc.Newsletter.GetNewsletters(h.ctx, parent, "DRAFT")
	if len(drafts) != 0 {
		t.Error("parents must not list drafts")
	}
	drafts, _ = h.svc.Newsletter.GetNewsletters(h.ctx, staff, "draft")
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Error("staff should list drafts")
	}

	_, err = h.svc.Newsletter.GetNewsletters(h.ctx, staff, "SENT")
	assertErr(t, err, apperrors.ErrValidationFailed)

	_, err = h.svc.Newsletter.GetNewsletter(h.ctx, parent, draft.ID)
	assertErr(t, err, apperrors.ErrResourceNotFound)
	got, err := h.svc.Newsletter.GetNewsletter(h.ctx, staff, draft.ID)
	assertErr(t, err, nil)
	if got.ID != draft.ID {
		t.Errorf("got newsletter %d", got.ID)
	}
}

func TestFeaturedNewsletters(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff@example.com", models.RoleStaff)

	featuredDraft := draftRequest("Featured draft")
	featuredDraft.Featured = true
	h.svc.Newsletter.CreateNewsletter(h.ctx, staff, featuredDraft)

	featured := draftRequest("Featured")
	featured.Featured = true
	featured.Status = "PUBLISHED"
	want, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, featured)

	plain := draftRequest("Plain")
	plain.Status = "PUBLISHED"
	h.svc.Newsletter.CreateNewsletter(h.ctx, staff, plain)

	list, err := h.svc.Newsletter.GetFeaturedNewsletters(h.ctx)
	assertErr(t, err, nil)
	if len(list) != 1 || list[0].ID != want.ID {
		t.Errorf("featured = %+v", list)
	}
}

func TestPublishNewsletterFanOut(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff@example.com", models.RoleStaff)
	p1 := h.user(t, "p1@example.com", models.RoleParent)
	p2 := h.user(t, "p2@example.com", models.RoleParent)
	p3 := h.user(t, "p3@example.com", models.RoleParent)

	subscribe := func(u *models.User, on bool) {
		t.Helper()
		if _, err := h.svc.Subscription.UpdateSubscription(h.ctx, u, &dto.UpdateSubscriptionRequest{IsSubscribed: &on}); err != nil {
			t.Fatal(err)
		}
	}
	subscribe(p1, true)
	subscribe(p2, false)

	n, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, draftRequest("Spring"))

	_, err := h.svc.Newsletter.PublishNewsletter(h.ctx, p1, n.ID, true)
	assertErr(t, err, apperrors.ErrPermissionDenied)
	_, err = h.svc.Newsletter.PublishNewsletter(h.ctx, nil, n.ID, true)
	assertErr(t, err, apperrors.ErrNotAuthenticated)
	_, err = h.svc.Newsletter.PublishNewsletter(h.ctx, staff, 9999, true)
	assertErr(t, err, apperrors.ErrResourceNotFound)

	first, err := h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, true)
	assertErr(t, err, nil)
	if first.RecipientsAdded != 1 {
		t.Errorf("first fan-out added %d, want 1", first.RecipientsAdded)
	}
	if first.Newsletter.Status != "PUBLISHED" || !first.Newsletter.SentToAll || first.Newsletter.PublishedAt == nil {
		t.Errorf("unexpected newsletter state %+v", first.Newsletter)
	}
	publishedAt := *first.Newsletter.PublishedAt

	// p3 subscribes later; a second publish reaches only them
	h.clock.Advance(time.Hour)
	subscribe(p3, true)
	second, err := h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, true)
	assertErr(t, err, nil)
	if second.RecipientsAdded != 1 {
		t.Errorf("second fan-out added %d, want 1", second.RecipientsAdded)
	}
	if !second.Newsletter.PublishedAt.Equal(publishedAt) {
		t.Error("re-publishing must keep the original published_at")
	}

	third, _ := h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, true)
	if third.RecipientsAdded != 0 {
		t.Errorf("third fan-out added %d, want 0", third.RecipientsAdded)
	}

	_, err = h.svc.Newsletter.GetRecipients(h.ctx, p1, n.ID)
	assertErr(t, err, apperrors.ErrPermissionDenied)
	_, err = h.svc.Newsletter.GetRecipients(h.ctx, nil, n.ID)
	assertErr(t, err, apperrors.ErrNotAuthenticated)
	_, err = h.svc.Newsletter.GetRecipients(h.ctx, staff, 9999)
	assertErr(t, err, apperrors.ErrResourceNotFound)

	recipients, err := h.svc.Newsletter.GetRecipients(h.ctx, staff, n.ID)
	assertErr(t, err, nil)
	seen := map[int64]bool{}
	for _, r := range recipients {
		if seen[r.UserID] {
			t.Fatalf("duplicate recipient for user %d", r.UserID)
		}
		seen[r.UserID] = true
	}
	if len(recipients) != 2 || !seen[p1.ID] || !seen[p3.ID] || seen[p2.ID] {
		t.Errorf("recipients = %v", seen)
	}

	types := h.publisher.types()
	if len(types) != 2 || types[0] != messaging.TypeNewsletterPublished {
		t.Errorf("published events = %v", types)
	}
}

func TestArchiveNewsletter(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff@example.com", models.RoleStaff)
	n, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, draftRequest("Archive me"))

	_, err := h.svc.Newsletter.ArchiveNewsletter(h.ctx, staff, n.ID)
	assertErr(t, err, apperrors.ErrInvalidState)

	h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, false)
	archived, err := h.svc.Newsletter.ArchiveNewsletter(h.ctx, staff, n.ID)
	assertErr(t, err, nil)
	if archived.Status != "ARCHIVED" || archived.PublishedAt == nil {
		t.Errorf("unexpected archived newsletter %+v", archived)
	}

	_, err = h.svc.Newsletter.ArchiveNewsletter(h.ctx, staff, n.ID)
	assertErr(t, err, apperrors.ErrInvalidState)
	_, err = h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, true)
	assertErr(t, err, apperrors.ErrInvalidState)

	list, _ := h.svc.Newsletter.GetNewsletters(h.ctx, nil, "ARCHIVED")
	if len(list) != 1 {
		t.Errorf("archived listing has %d items", len(list))
	}
}

func TestRecipientTracking(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff@example.com", models.RoleStaff)
	reader := h.user(t, "reader@example.com", models.RoleParent)
	outsider := h.user(t, "outsider@example.com", models.RoleParent)

	h.svc.Subscription.MySubscription(h.ctx, reader)
	n, _ := h.svc.Newsletter.CreateNewsletter(h.ctx, staff, draftRequest("Tracked"))
	h.svc.Newsletter.PublishNewsletter(h.ctx, staff, n.ID, true)

	firstOpen := h.clock.Now()
	opened, err := h.svc.Newsletter.MarkOpened(h.ctx, reader, n.ID)
	assertErr(t, err, nil)
	if opened.OpenedAt == nil || !opened.OpenedAt.Equal(firstOpen) {
		t.Fatalf("openedAt = %v", opened.OpenedAt)
	}

	h.clock.Advance(time.Hour)
	again, _ := h.svc.Newsletter.MarkOpened(h.ctx, reader, n.ID)
	if !again.OpenedAt.Equal(firstOpen) {
		t.Error("a second open must keep the first timestamp")
	}

	clicked, err := h.svc.Newsletter.MarkClicked(h.ctx, reader, n.ID)
	assertErr(t, err, nil)
	if !clicked.Clicked || !clicked.OpenedAt.Equal(firstOpen) {
		t.Errorf("unexpected recipient %+v", clicked)
	}

	_, err = h.svc.Newsletter.MarkOpened(h.ctx, outsider, n.ID)
	assertErr(t, err, apperrors.ErrResourceNotFound)
	_, err = h.svc.Newsletter.MarkOpened(h.ctx, nil, n.ID)
	assertErr(t, err, apperrors.ErrNotAuthenticated)
}
