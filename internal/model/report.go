// Package model defines domain entities for the application.
package model

import "time"

// ReportFrequency determines how often a scheduled report recurs.
type ReportFrequency string

const (
	FrequencyDaily   ReportFrequency = "daily"
	FrequencyWeekly  ReportFrequency = "weekly"
	FrequencyMonthly ReportFrequency = "monthly"
)

// IsValidFrequency checks if a frequency value is recognized.
func IsValidFrequency(f ReportFrequency) bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// ScheduledReport describes a recurring aggregation job.
type ScheduledReport struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`

	Frequency  ReportFrequency `json:"frequency"`
	DayOfWeek  *int            `json:"day_of_week,omitempty"`  // 0=Sunday, weekly only
	DayOfMonth *int            `json:"day_of_month,omitempty"` // monthly only
	Time       string          `json:"time"`                   // HH:mm, default 09:00
	Format     string          `json:"format"`

	// LinkIDs restricts the report to specific links; empty means all links.
	LinkIDs []string `json:"link_ids,omitempty"`

	NextSend time.Time `json:"next_send"`
	IsActive bool      `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportData is the generated report payload: per-link snapshots
// plus summed totals over the report period.
type ReportData struct {
	TotalClicks int64        `json:"total_clicks"`
	Links       []LinkReport `json:"links"`
	Period      ReportPeriod `json:"period"`
}

// LinkReport holds one link's aggregates inside a report.
type LinkReport struct {
	LinkID    string           `json:"link_id"`
	ShortCode string           `json:"short_code"`
	Title     string           `json:"title,omitempty"`
	Clicks    int64            `json:"clicks"`
	Devices   map[string]int64 `json:"devices,omitempty"`
	Countries map[string]int64 `json:"countries,omitempty"`
}

// ReportPeriod is the half-open time window a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
