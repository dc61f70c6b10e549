package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/auth"
	"github.com/Alirezastar2/utmkit-sub000/internal/enrich"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/resolver"
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

type channelClickStore struct {
	inserted chan *model.Click
}

func (s *channelClickStore) InsertClick(ctx context.Context, click *model.Click) error {
	s.inserted <- click
	return nil
}

func newRedirectTestHandler(t *testing.T, links map[string]*model.Link, clickCount int64) (*RedirectHandler, *channelClickStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := &channelClickStore{inserted: make(chan *model.Click, 1)}
	enricher := enrich.New(store, nil, nil, nil, logger, nil)

	res := resolver.New(&fakeLinkSource{links: links}, &fakeClickCounter{count: clickCount}, logger)

	return NewRedirectHandler(res, enricher, "https://utmkit.example.com", logger, nil), store
}

func serveRedirect(h *RedirectHandler, target string, headers map[string]string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/l/{shortCode}", h.Redirect)
	r.Get("/link-expired", h.LinkExpired)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func activeLink(shortCode string) *model.Link {
	return &model.Link{
		ID:          "link-1",
		ShortCode:   shortCode,
		OriginalURL: "https://example.com/landing",
		UserID:      "user-1",
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestRedirect_Success(t *testing.T) {
	link := activeLink("abc123")
	h, store := newRedirectTestHandler(t, map[string]*model.Link{"abc123": link}, 0)

	rec := serveRedirect(h, "/l/abc123", map[string]string{
		"User-Agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari",
		"Referer":    "https://twitter.com/somebody",
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/landing" {
		t.Errorf("unexpected Location: %s", loc)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}

	select {
	case click := <-store.inserted:
		if click.LinkID != "link-1" {
			t.Errorf("click recorded for wrong link: %s", click.LinkID)
		}
		if click.DeviceType != model.DeviceMobile {
			t.Errorf("DeviceType = %s, want MOBILE", click.DeviceType)
		}
		if click.Referer != "https://twitter.com/somebody" {
			t.Errorf("unexpected referer: %s", click.Referer)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("click was never recorded")
	}
}

func TestRedirect_AppendsUTM(t *testing.T) {
	link := activeLink("promo")
	link.UTMSource = "newsletter"
	link.UTMMedium = "email"
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{"promo": link}, 0)

	rec := serveRedirect(h, "/l/promo", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "utm_source=newsletter") || !strings.Contains(loc, "utm_medium=email") {
		t.Errorf("UTM params missing from Location: %s", loc)
	}
}

func TestRedirect_UnknownCodeGoesHome(t *testing.T) {
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{}, 0)

	rec := serveRedirect(h, "/l/missing", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://utmkit.example.com" {
		t.Errorf("unexpected Location: %s", loc)
	}
}

func TestRedirect_ExpiredGoesToNotice(t *testing.T) {
	link := activeLink("old")
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{"old": link}, 0)

	rec := serveRedirect(h, "/l/old", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/link-expired" {
		t.Errorf("unexpected Location: %s", loc)
	}
}

func TestRedirect_CapReachedGoesToNotice(t *testing.T) {
	link := activeLink("capped")
	maxClicks := int64(10)
	link.MaxClicks = &maxClicks
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{"capped": link}, 10)

	rec := serveRedirect(h, "/l/capped", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/link-expired" {
		t.Errorf("unexpected Location: %s", loc)
	}
}

func TestRedirect_PasswordFlow(t *testing.T) {
	hash, err := auth.HashPassword("open-sesame")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	link := activeLink("secret")
	link.PasswordHash = hash
	h, store := newRedirectTestHandler(t, map[string]*model.Link{"secret": link}, 0)

	// No password: the form is served instead of the redirect.
	rec := serveRedirect(h, "/l/secret", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="p"`) {
		t.Error("password form should submit the p parameter")
	}
	if !strings.Contains(body, `action="/l/secret"`) {
		t.Error("password form should resubmit to the same short link")
	}
	if strings.Contains(body, "Incorrect password") {
		t.Error("no mismatch message expected on first visit")
	}

	// Wrong password: form again, with the error message.
	rec = serveRedirect(h, "/l/secret?p=wrong", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect password") {
		t.Error("mismatch message expected for wrong password")
	}

	// Correct password: through to the destination.
	rec = serveRedirect(h, "/l/secret?p=open-sesame", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/landing" {
		t.Errorf("unexpected Location: %s", loc)
	}

	select {
	case <-store.inserted:
	case <-time.After(2 * time.Second):
		t.Fatal("authorized visit should record a click")
	}
}

func TestRedirect_InactiveGoesToNotice(t *testing.T) {
	link := activeLink("off")
	link.IsActive = false
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{"off": link}, 0)

	rec := serveRedirect(h, "/l/off", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/link-expired" {
		t.Errorf("unexpected Location: %s", loc)
	}
}

func TestLinkExpiredPage(t *testing.T) {
	h, _ := newRedirectTestHandler(t, map[string]*model.Link{}, 0)

	rec := serveRedirect(h, "/link-expired", nil)

	if rec.Code != http.StatusGone {
		t.Fatalf("expected status 410, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no longer available") {
		t.Error("notice page should explain the link is gone")
	}
}
