//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/Alirezastar2/utmkit-sub000/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationCache_SetAndGetLink(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	code := testutil.UniqueShortCode("c")
	link := testutil.NewTestLink(t, code)
	link.UTMSource = "newsletter"

	if err := c.SetLink(ctx, code, link); err != nil {
		t.Fatalf("SetLink failed: %v", err)
	}

	cached, err := c.GetLink(ctx, code)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	got := cached.ToLink(code)
	if got.ID != link.ID {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, link.ID)
	}
	if got.UTMSource != "newsletter" {
		t.Errorf("UTMSource not cached: %q", got.UTMSource)
	}
}

func TestIntegrationCache_Miss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	_, err := c.GetLink(ctx, "never-set")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestIntegrationCache_NegativeEntryClearedByDelete(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// A visitor hits a code that does not exist yet.
	code := testutil.UniqueShortCode("n")
	if err := c.SetNegativeCache(ctx, code); err != nil {
		t.Fatalf("SetNegativeCache failed: %v", err)
	}

	negative, err := c.IsNegativelyCached(ctx, code)
	if err != nil {
		t.Fatalf("IsNegativelyCached failed: %v", err)
	}
	if !negative {
		t.Fatal("code should be negatively cached")
	}

	// Link creation invalidates the entry so the new code resolves
	// immediately instead of waiting out the negative TTL.
	if err := c.DeleteLink(ctx, code); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	negative, err = c.IsNegativelyCached(ctx, code)
	if err != nil {
		t.Fatalf("IsNegativelyCached failed: %v", err)
	}
	if negative {
		t.Error("negative entry should be gone after DeleteLink")
	}
}

func TestIntegrationCache_SetLinkClearsNegativeEntry(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	code := testutil.UniqueShortCode("s")
	if err := c.SetNegativeCache(ctx, code); err != nil {
		t.Fatalf("SetNegativeCache failed: %v", err)
	}

	if err := c.SetLink(ctx, code, testutil.NewTestLink(t, code)); err != nil {
		t.Fatalf("SetLink failed: %v", err)
	}

	negative, err := c.IsNegativelyCached(ctx, code)
	if err != nil {
		t.Fatalf("IsNegativelyCached failed: %v", err)
	}
	if negative {
		t.Error("negative entry should be gone after SetLink")
	}
}
