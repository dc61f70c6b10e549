// Package testutil provides helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 550550

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// applyMigration runs the down then up SQL for a numbered migration.
func applyMigration(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".down.sql"))
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration %s: %w", name, err)
	}

	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".up.sql"))
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration %s: %w", name, err)
	}

	return nil
}

// ResetLinksSchema drops and recreates the links and clicks tables.
func ResetLinksSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000001_links"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_clicks")
}

// ResetWebhooksSchema drops and recreates the webhooks tables.
func ResetWebhooksSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return applyMigration(ctx, pool, "000003_webhooks")
}

// ResetReportsSchema drops and recreates the scheduled_reports table.
func ResetReportsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return applyMigration(ctx, pool, "000004_scheduled_reports")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// NewTestLink creates a test link with sensible defaults.
func NewTestLink(t testing.TB, shortCode string) *model.Link {
	t.Helper()
	now := time.Now().UTC()
	return &model.Link{
		ID:          fmt.Sprintf("link-%d", now.UnixNano()),
		ShortCode:   shortCode,
		OriginalURL: "https://example.com/" + shortCode,
		UserID:      "test-user",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestClick creates a test click for the given link.
func NewTestClick(t testing.TB, linkID string) *model.Click {
	t.Helper()
	now := time.Now().UTC()
	return &model.Click{
		ID:         UniqueID("click"),
		LinkID:     linkID,
		IP:         "203.0.113.10",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		DeviceType: model.DeviceDesktop,
		OS:         "Windows",
		Browser:    "Chrome",
		CreatedAt:  now,
	}
}

// UniqueShortCode generates a unique short code for tests.
func UniqueShortCode(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
