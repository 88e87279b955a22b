package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/database/mock"
)

type fixture struct {
	svc           *Service
	ads           *mock.MockAdStore
	versions      *mock.MockVersionStore
	reviews       *mock.MockReviewStore
	notifications *mock.MockNotificationStore
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ads:           mock.NewMockAdStore(),
		versions:      mock.NewMockVersionStore(),
		reviews:       mock.NewMockReviewStore(),
		notifications: mock.NewMockNotificationStore(),
		now:           time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.ads, f.versions, f.reviews, f.notifications, 7*24*time.Hour)
	f.svc.now = func() time.Time { return f.now }
	f.ads.AddAd(database.Ad{
		ID:         "ad-1",
		UserID:     "owner-1",
		ClientName: "Acme",
		AdName:     "Spring Sale",
		Status:     database.AdStatusDraft,
	})
	return f
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	if len(a) != 40 {
		t.Errorf("len(token) = %d, want 40", len(a))
	}
	if a == b {
		t.Error("tokens should be unique")
	}
}

func TestCreateLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.CreateLink(ctx, LinkRequest{AdID: "ad-1", ClientEmail: " jane@example.com ", ClientName: "Jane"})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if tok.ClientEmail != "jane@example.com" {
		t.Errorf("ClientEmail = %q", tok.ClientEmail)
	}
	if !tok.ExpiresAt.Equal(f.now.Add(7 * 24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v", tok.ExpiresAt)
	}
	if got := f.ads.Ad("ad-1").Status; got != database.AdStatusInReview {
		t.Errorf("ad status = %q, want in_review", got)
	}

	if _, err := f.svc.CreateLink(ctx, LinkRequest{AdID: "ad-1", ClientEmail: "nope"}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email err = %v", err)
	}
	if _, err := f.svc.CreateLink(ctx, LinkRequest{AdID: "missing", ClientEmail: "a@b.c"}); !errors.Is(err, ErrAdNotFound) {
		t.Errorf("missing ad err = %v", err)
	}
}

func TestLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.versions.AddVersion(database.Version{ID: "v-1", AdID: "ad-1", IsSelected: true, PreviewURL: "https://cdn.example.com/a.png"})
	f.reviews.AddToken(database.ReviewToken{Token: "live", AdID: "ad-1", ClientEmail: "jane@example.com", ExpiresAt: f.now.Add(time.Hour)})
	f.reviews.AddToken(database.ReviewToken{Token: "expired", AdID: "ad-1", ExpiresAt: f.now.Add(-time.Hour)})
	used := f.now.Add(-time.Minute)
	f.reviews.AddToken(database.ReviewToken{Token: "used", AdID: "ad-1", ExpiresAt: f.now.Add(time.Hour), UsedAt: &used})

	page, err := f.svc.Lookup(ctx, "live")
	if err != nil {
		t.Fatalf("Lookup(live): %v", err)
	}
	if page.Ad == nil || page.Ad.ID != "ad-1" || page.Version == nil || page.Version.ID != "v-1" || page.Submitted {
		t.Errorf("Lookup(live) = %+v", page)
	}

	if _, err := f.svc.Lookup(ctx, "expired"); !errors.Is(err, database.ErrTokenExpired) {
		t.Errorf("Lookup(expired) err = %v", err)
	}
	page, err = f.svc.Lookup(ctx, "used")
	if err != nil || !page.Submitted || page.Ad != nil {
		t.Errorf("Lookup(used) = %+v, %v", page, err)
	}
	if _, err := f.svc.Lookup(ctx, "unknown"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Lookup(unknown) err = %v", err)
	}
}

func TestRespondApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reviews.AddToken(database.ReviewToken{Token: "tok", AdID: "ad-1", ClientEmail: "jane@example.com", ClientName: "Jane", ExpiresAt: f.now.Add(time.Hour)})

	n, err := f.svc.Respond(ctx, "tok", Response{Response: database.ReviewApproved})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got := f.ads.Ad("ad-1").Status; got != database.AdStatusApproved {
		t.Errorf("ad status = %q, want approved", got)
	}
	if n.Type != database.NotificationReviewApproved || n.UserID != "owner-1" || n.Title != "Ad Approved!" {
		t.Errorf("notification = %+v", n)
	}
	if n.Message != `Jane approved "Spring Sale"` {
		t.Errorf("message = %q", n.Message)
	}
	if len(f.notifications.All()) != 1 {
		t.Errorf("notifications stored = %d", len(f.notifications.All()))
	}

	_, err = f.svc.Respond(ctx, "tok", Response{Response: database.ReviewApproved})
	if !errors.Is(err, database.ErrTokenUsed) {
		t.Errorf("second Respond err = %v, want ErrTokenUsed", err)
	}
	if len(f.notifications.All()) != 1 {
		t.Error("second response must not notify")
	}
}

func TestRespondChangesRequested(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reviews.AddToken(database.ReviewToken{Token: "tok", AdID: "ad-1", ClientEmail: "jane@example.com", ExpiresAt: f.now.Add(time.Hour)})
	if err := f.ads.UpdateAdStatus(ctx, "ad-1", database.AdStatusInReview); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Respond(ctx, "tok", Response{Response: database.ReviewChangesRequested, Feedback: "  "}); !errors.Is(err, ErrFeedbackRequired) {
		t.Errorf("blank feedback err = %v", err)
	}

	n, err := f.svc.Respond(ctx, "tok", Response{Response: database.ReviewChangesRequested, Feedback: "Bigger logo"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got := f.ads.Ad("ad-1").Status; got != database.AdStatusDraft {
		t.Errorf("ad status = %q, want draft", got)
	}
	if n.Type != database.NotificationReviewChangesRequested || n.Metadata["feedback"] != "Bigger logo" {
		t.Errorf("notification = %+v", n)
	}
	if n.Metadata["client_email"] != "jane@example.com" {
		t.Errorf("metadata = %+v", n.Metadata)
	}
}

func TestRespondRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reviews.AddToken(database.ReviewToken{Token: "expired", AdID: "ad-1", ExpiresAt: f.now.Add(-time.Hour)})

	if _, err := f.svc.Respond(ctx, "expired", Response{Response: "rejected"}); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("invalid response err = %v", err)
	}
	if _, err := f.svc.Respond(ctx, "expired", Response{Response: database.ReviewApproved}); !errors.Is(err, database.ErrTokenExpired) {
		t.Errorf("expired err = %v", err)
	}
	if _, err := f.svc.Respond(ctx, "unknown", Response{Response: database.ReviewApproved}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown err = %v", err)
	}
	if got := f.ads.Ad("ad-1").Status; got != database.AdStatusDraft {
		t.Errorf("ad status changed to %q", got)
	}
}
