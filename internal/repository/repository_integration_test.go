//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetLinksSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset links schema: %v", err)
	}
	if err := testutil.ResetReportsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset reports schema: %v", err)
	}

	return ctx, repo
}

func TestIntegrationLink_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueShortCode("abc"))
	link.UTMSource = "newsletter"
	link.UTMMedium = "email"

	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	got, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}
	if got.ShortCode != link.ShortCode {
		t.Errorf("ShortCode mismatch: got %q, want %q", got.ShortCode, link.ShortCode)
	}
	if got.UTMSource != "newsletter" || got.UTMMedium != "email" {
		t.Errorf("UTM fields not persisted: %+v", got)
	}

	byCode, err := repo.GetLinkByShortCode(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("GetLinkByShortCode failed: %v", err)
	}
	if byCode.ID != link.ID {
		t.Errorf("ID mismatch: got %q, want %q", byCode.ID, link.ID)
	}
}

func TestIntegrationLink_DuplicateShortCode(t *testing.T) {
	ctx, repo := newTestEnv(t)

	code := testutil.UniqueShortCode("dup")
	first := testutil.NewTestLink(t, code)
	if err := repo.CreateLink(ctx, first); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	second := testutil.NewTestLink(t, code)
	second.ID = testutil.UniqueID("link")

	err := repo.CreateLink(ctx, second)
	if !errors.Is(err, ErrShortCodeExists) {
		t.Fatalf("expected ErrShortCodeExists, got %v", err)
	}
}

func TestIntegrationLink_GetMissing(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, err := repo.GetLinkByID(ctx, "nope")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestIntegrationLink_DeleteCascadesClicks(t *testing.T) {
	ctx, repo := newTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueShortCode("del"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if err := repo.InsertClick(ctx, testutil.NewTestClick(t, link.ID)); err != nil {
		t.Fatalf("InsertClick failed: %v", err)
	}

	if err := repo.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	count, err := repo.CountClicks(ctx, link.ID)
	if err != nil {
		t.Fatalf("CountClicks failed: %v", err)
	}
	if count != 0 {
		t.Errorf("clicks should cascade on delete, got %d", count)
	}
}

func TestIntegrationClick_CountAndWindow(t *testing.T) {
	ctx, repo := newTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueShortCode("clk"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		click := testutil.NewTestClick(t, link.ID)
		click.ID = testutil.UniqueID("click")
		click.CreatedAt = now.Add(time.Duration(-i) * 24 * time.Hour)
		if err := repo.InsertClick(ctx, click); err != nil {
			t.Fatalf("InsertClick failed: %v", err)
		}
	}

	count, err := repo.CountClicks(ctx, link.ID)
	if err != nil {
		t.Fatalf("CountClicks failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountClicks = %d, want 3", count)
	}

	start := now.Add(-36 * time.Hour)
	windowed, err := repo.ListClicks(ctx, link.ID, &start, nil)
	if err != nil {
		t.Fatalf("ListClicks failed: %v", err)
	}
	if len(windowed) != 2 {
		t.Errorf("windowed clicks = %d, want 2", len(windowed))
	}

	recent, err := repo.ListRecentClicks(ctx, link.ID, 2)
	if err != nil {
		t.Fatalf("ListRecentClicks failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent clicks = %d, want 2", len(recent))
	}
	if recent[0].CreatedAt.Before(recent[1].CreatedAt) {
		t.Error("recent clicks should be newest first")
	}
}

func TestIntegrationReport_DueListing(t *testing.T) {
	ctx, repo := newTestEnv(t)

	now := time.Now().UTC()
	dow := 1
	due := &model.ScheduledReport{
		ID:        testutil.UniqueID("report"),
		UserID:    "test-user",
		Frequency: model.FrequencyWeekly,
		DayOfWeek: &dow,
		Time:      "09:00",
		Format:    "json",
		NextSend:  now.Add(-time.Minute),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateReport(ctx, due); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	future := &model.ScheduledReport{
		ID:        testutil.UniqueID("report"),
		UserID:    "test-user",
		Frequency: model.FrequencyDaily,
		Time:      "09:00",
		Format:    "csv",
		NextSend:  now.Add(24 * time.Hour),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateReport(ctx, future); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	dueReports, err := repo.ListDueReports(ctx, now)
	if err != nil {
		t.Fatalf("ListDueReports failed: %v", err)
	}
	if len(dueReports) != 1 || dueReports[0].ID != due.ID {
		t.Fatalf("expected only the overdue report, got %d", len(dueReports))
	}

	next := now.Add(7 * 24 * time.Hour)
	if err := repo.UpdateNextSend(ctx, due.ID, next); err != nil {
		t.Fatalf("UpdateNextSend failed: %v", err)
	}

	dueReports, err = repo.ListDueReports(ctx, now)
	if err != nil {
		t.Fatalf("ListDueReports failed: %v", err)
	}
	if len(dueReports) != 0 {
		t.Errorf("expected no due reports after advancing, got %d", len(dueReports))
	}
}
