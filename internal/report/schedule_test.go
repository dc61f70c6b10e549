package report

import (
	"testing"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

func intPtr(i int) *int { return &i }

func TestNextSend(t *testing.T) {
	t.Parallel()

	// Saturday 2026-08-29 15:30 UTC
	now := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		frequency  model.ReportFrequency
		dayOfWeek  *int
		dayOfMonth *int
		timeOfDay  string
		want       time.Time
	}{
		{
			name:      "daily next morning",
			frequency: model.FrequencyDaily,
			timeOfDay: "08:15",
			want:      time.Date(2026, 8, 30, 8, 15, 0, 0, time.UTC),
		},
		{
			name:      "daily defaults to 09:00",
			frequency: model.FrequencyDaily,
			want:      time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly upcoming monday",
			frequency: model.FrequencyWeekly,
			dayOfWeek: intPtr(1), // Monday
			timeOfDay: "09:00",
			want:      time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly same weekday rolls a full week",
			frequency: model.FrequencyWeekly,
			dayOfWeek: intPtr(6), // Saturday, today
			timeOfDay: "09:00",
			want:      time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly without weekday is one week out",
			frequency: model.FrequencyWeekly,
			timeOfDay: "09:00",
			want:      time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name:       "monthly on chosen day",
			frequency:  model.FrequencyMonthly,
			dayOfMonth: intPtr(15),
			timeOfDay:  "09:00",
			want:       time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly defaults to the first",
			frequency: model.FrequencyMonthly,
			timeOfDay: "09:00",
			want:      time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "malformed time falls back to default",
			frequency: model.FrequencyDaily,
			timeOfDay: "25:99",
			want:      time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NextSend(now, tt.frequency, tt.dayOfWeek, tt.dayOfMonth, tt.timeOfDay)
			if !got.Equal(tt.want) {
				t.Errorf("NextSend() = %v, want %v", got, tt.want)
			}
			if !got.After(now) {
				t.Errorf("NextSend() = %v, not after now %v", got, now)
			}
		})
	}
}

func TestReportWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency model.ReportFrequency
		wantStart time.Time
	}{
		{frequency: model.FrequencyDaily, wantStart: now.AddDate(0, 0, -1)},
		{frequency: model.FrequencyWeekly, wantStart: now.AddDate(0, 0, -7)},
		{frequency: model.FrequencyMonthly, wantStart: now.AddDate(0, -1, 0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.frequency), func(t *testing.T) {
			t.Parallel()

			period := ReportWindow(now, tt.frequency)
			if !period.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", period.Start, tt.wantStart)
			}
			if !period.End.Equal(now) {
				t.Errorf("End = %v, want %v", period.End, now)
			}
		})
	}
}
