// Package report generates and schedules periodic analytics reports.
package report

import (
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// DefaultSendTime is used when a schedule has no time of day set.
const DefaultSendTime = "09:00"

// NextSend computes the next delivery time for a schedule, strictly
// after now. Weekly schedules landing on the current weekday roll a
// full week forward, monthly schedules fire on dayOfMonth (or the 1st)
// of the following month.
func NextSend(now time.Time, frequency model.ReportFrequency, dayOfWeek, dayOfMonth *int, timeOfDay string) time.Time {
	hour, minute := parseTimeOfDay(timeOfDay)

	switch frequency {
	case model.FrequencyWeekly:
		// No target weekday means one week from now, not a fixed day.
		days := 7
		if dayOfWeek != nil {
			days = (*dayOfWeek - int(now.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
		}

		next := now.AddDate(0, 0, days)
		return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, now.Location())

	case model.FrequencyMonthly:
		day := 1
		if dayOfMonth != nil {
			day = *dayOfMonth
		}

		next := now.AddDate(0, 1, 0)
		return time.Date(next.Year(), next.Month(), day, hour, minute, 0, 0, now.Location())

	default: // daily
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, now.Location())
	}
}

// ReportWindow returns the period a report covers, ending at now.
func ReportWindow(now time.Time, frequency model.ReportFrequency) model.ReportPeriod {
	var start time.Time
	switch frequency {
	case model.FrequencyWeekly:
		start = now.AddDate(0, 0, -7)
	case model.FrequencyMonthly:
		start = now.AddDate(0, -1, 0)
	default:
		start = now.AddDate(0, 0, -1)
	}
	return model.ReportPeriod{Start: start, End: now}
}

func parseTimeOfDay(timeOfDay string) (hour, minute int) {
	if timeOfDay == "" {
		timeOfDay = DefaultSendTime
	}

	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		parsed, _ = time.Parse("15:04", DefaultSendTime)
	}

	return parsed.Hour(), parsed.Minute()
}
