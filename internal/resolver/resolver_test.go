package resolver

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/auth"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
)

type fakeLinkSource struct {
	links map[string]*model.Link
}

func (f *fakeLinkSource) LookupByCode(ctx context.Context, shortCode string) (*model.Link, error) {
	link, ok := f.links[shortCode]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

type fakeClickCounter struct {
	count int64
}

func (f *fakeClickCounter) CountClicks(ctx context.Context, linkID string) (int64, error) {
	return f.count, nil
}

func newTestResolver(links map[string]*model.Link, clickCount int64) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(&fakeLinkSource{links: links}, &fakeClickCounter{count: clickCount}, logger)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	cap10 := int64(10)
	hash, err := auth.HashPassword("opensesame")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name        string
		link        *model.Link
		clickCount  int64
		shortCode   string
		password    string
		wantOutcome Outcome
		wantURL     string
	}{
		{
			name:        "unknown code",
			shortCode:   "nope",
			wantOutcome: OutcomeNotFound,
		},
		{
			name:        "inactive link",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: false},
			shortCode:   "abc123",
			wantOutcome: OutcomeInactive,
		},
		{
			name:        "expired link",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, ExpiresAt: &past},
			shortCode:   "abc123",
			wantOutcome: OutcomeExpired,
		},
		{
			name:        "expiry checked before cap",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, ExpiresAt: &past, MaxClicks: &cap10},
			clickCount:  10,
			shortCode:   "abc123",
			wantOutcome: OutcomeExpired,
		},
		{
			name:        "cap reached",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, MaxClicks: &cap10},
			clickCount:  10,
			shortCode:   "abc123",
			wantOutcome: OutcomeCapReached,
		},
		{
			name:        "under cap passes",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, MaxClicks: &cap10},
			clickCount:  9,
			shortCode:   "abc123",
			wantOutcome: OutcomeAuthorized,
			wantURL:     "https://example.com",
		},
		{
			name:        "password required",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, PasswordHash: hash},
			shortCode:   "abc123",
			wantOutcome: OutcomePasswordRequired,
		},
		{
			name:        "wrong password",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, PasswordHash: hash},
			shortCode:   "abc123",
			password:    "wrong",
			wantOutcome: OutcomePasswordMismatch,
		},
		{
			name:        "correct password",
			link:        &model.Link{ID: "1", OriginalURL: "https://example.com", IsActive: true, PasswordHash: hash},
			shortCode:   "abc123",
			password:    "opensesame",
			wantOutcome: OutcomeAuthorized,
			wantURL:     "https://example.com",
		},
		{
			name: "authorized with utm tags",
			link: &model.Link{
				ID:          "1",
				OriginalURL: "https://example.com/x?ref=1",
				IsActive:    true,
				ExpiresAt:   &future,
				UTMSource:   "ig",
				UTMMedium:   "story",
			},
			shortCode:   "abc123",
			wantOutcome: OutcomeAuthorized,
			wantURL:     "https://example.com/x?ref=1&utm_medium=story&utm_source=ig",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			links := map[string]*model.Link{}
			if tt.link != nil {
				links["abc123"] = tt.link
			}
			r := newTestResolver(links, tt.clickCount)

			res, err := r.Resolve(context.Background(), tt.shortCode, tt.password)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Resolve() outcome = %s, want %s", res.Outcome, tt.wantOutcome)
			}
			if tt.wantURL != "" && res.FinalURL != tt.wantURL {
				t.Errorf("Resolve() final URL = %q, want %q", res.FinalURL, tt.wantURL)
			}
		})
	}
}
