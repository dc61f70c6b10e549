// Package model defines domain entities for the application.
package model

import "time"

// StatsSnapshot is the aggregate view of a link's click history
// over a requested time window. Every grouping is computed from the
// same filtered click set, so grouping sums reconcile with TotalClicks.
type StatsSnapshot struct {
	LinkID      string `json:"link_id"`
	TotalClicks int64  `json:"total_clicks"`

	// Devices counts clicks per device type, including UNKNOWN.
	Devices map[string]int64 `json:"device_stats"`

	// Referrers counts clicks per referrer host; "direct" for absent referrer.
	Referrers map[string]int64 `json:"referer_stats"`

	// Daily is the per-calendar-day series, ascending by date.
	Daily []DailyCount `json:"daily"`

	// Countries is the top countries by count, descending,
	// ties broken by first appearance in the click set.
	Countries []CountryCount `json:"countries"`

	// TopHours is the top 10 hour-of-day buckets by count, descending.
	TopHours []HourCount `json:"top_hours"`

	// RecentClicks holds the most recent click records, newest first.
	RecentClicks []*Click `json:"recent_clicks,omitempty"`

	Window      WindowInfo `json:"window"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// DailyCount is the click count for a single calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// CountryCount is the click count for one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// HourCount is the click count for one hour-of-day bucket (0-23).
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// WindowInfo echoes the resolved time window of a snapshot.
type WindowInfo struct {
	Filter string     `json:"filter"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}
