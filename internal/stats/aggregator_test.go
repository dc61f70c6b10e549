package stats

import (
	"testing"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

func click(device model.DeviceType, country, referer string, at time.Time) *model.Click {
	return &model.Click{
		LinkID:     "link-1",
		DeviceType: device,
		Country:    country,
		Referer:    referer,
		CreatedAt:  at,
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

	clicks := []*model.Click{
		click(model.DeviceMobile, "DE", "https://instagram.com/p/x", base),
		click(model.DeviceMobile, "DE", "https://instagram.com/p/y", base.Add(time.Minute)),
		click(model.DeviceDesktop, "US", "", base.Add(2*time.Minute)),
		click(model.DeviceMobile, "FR", "https://t.co/abc", base.AddDate(0, 0, 1)),
		click(model.DeviceDesktop, "DE", "", base.AddDate(0, 0, 1).Add(time.Hour)),
	}

	snap := Aggregate("link-1", clicks, Window{Filter: FilterAll})

	if snap.TotalClicks != 5 {
		t.Errorf("TotalClicks = %d, want 5", snap.TotalClicks)
	}

	if snap.Devices["MOBILE"] != 3 || snap.Devices["DESKTOP"] != 2 {
		t.Errorf("Devices = %v, want MOBILE:3 DESKTOP:2", snap.Devices)
	}

	if snap.Referrers["instagram.com"] != 2 {
		t.Errorf("Referrers[instagram.com] = %d, want 2", snap.Referrers["instagram.com"])
	}
	if snap.Referrers["direct"] != 2 {
		t.Errorf("Referrers[direct] = %d, want 2", snap.Referrers["direct"])
	}
	if snap.Referrers["t.co"] != 1 {
		t.Errorf("Referrers[t.co] = %d, want 1", snap.Referrers["t.co"])
	}

	// Daily counts ascending by date
	wantDaily := []model.DailyCount{
		{Date: "2026-08-20", Count: 3},
		{Date: "2026-08-21", Count: 2},
	}
	if len(snap.Daily) != len(wantDaily) {
		t.Fatalf("Daily has %d entries, want %d", len(snap.Daily), len(wantDaily))
	}
	for i, want := range wantDaily {
		if snap.Daily[i] != want {
			t.Errorf("Daily[%d] = %+v, want %+v", i, snap.Daily[i], want)
		}
	}

	// Countries descending by count, ties by first appearance
	if len(snap.Countries) != 3 {
		t.Fatalf("Countries has %d entries, want 3", len(snap.Countries))
	}
	if snap.Countries[0].Country != "DE" || snap.Countries[0].Count != 3 {
		t.Errorf("Countries[0] = %+v, want DE:3", snap.Countries[0])
	}
	if snap.Countries[1].Country != "US" {
		t.Errorf("Countries[1] = %+v, want US first among ties", snap.Countries[1])
	}
	if snap.Countries[2].Country != "FR" {
		t.Errorf("Countries[2] = %+v, want FR", snap.Countries[2])
	}

	// Recent clicks newest first
	if len(snap.RecentClicks) != 5 {
		t.Fatalf("RecentClicks has %d entries, want 5", len(snap.RecentClicks))
	}
	if !snap.RecentClicks[0].CreatedAt.After(snap.RecentClicks[4].CreatedAt) {
		t.Error("RecentClicks not ordered newest first")
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	snap := Aggregate("link-1", nil, Window{Filter: FilterAll})

	if snap.TotalClicks != 0 {
		t.Errorf("TotalClicks = %d, want 0", snap.TotalClicks)
	}
	if len(snap.Devices) != 0 || len(snap.Daily) != 0 || len(snap.Countries) != 0 {
		t.Error("empty input produced non-empty aggregates")
	}
	if len(snap.RecentClicks) != 0 {
		t.Errorf("RecentClicks has %d entries, want 0", len(snap.RecentClicks))
	}
}

func TestAggregate_DeviceSumMatchesTotal(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	var clicks []*model.Click
	devices := []model.DeviceType{model.DeviceMobile, model.DeviceDesktop, model.DeviceTablet, model.DeviceUnknown}
	for i := 0; i < 40; i++ {
		clicks = append(clicks, click(devices[i%len(devices)], "", "", base.Add(time.Duration(i)*time.Minute)))
	}

	snap := Aggregate("link-1", clicks, Window{Filter: FilterAll})

	var sum int64
	for _, count := range snap.Devices {
		sum += count
	}
	if sum != snap.TotalClicks {
		t.Errorf("device counts sum to %d, total is %d", sum, snap.TotalClicks)
	}
}

func TestAggregate_RecentClicksCapped(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	var clicks []*model.Click
	for i := 0; i < 25; i++ {
		clicks = append(clicks, click(model.DeviceDesktop, "", "", base.Add(time.Duration(i)*time.Minute)))
	}

	snap := Aggregate("link-1", clicks, Window{Filter: FilterAll})

	if len(snap.RecentClicks) != recentClicksLimit {
		t.Errorf("RecentClicks has %d entries, want %d", len(snap.RecentClicks), recentClicksLimit)
	}
	if !snap.RecentClicks[0].CreatedAt.Equal(base.Add(24 * time.Minute)) {
		t.Errorf("RecentClicks[0] at %v, want newest click", snap.RecentClicks[0].CreatedAt)
	}
}
