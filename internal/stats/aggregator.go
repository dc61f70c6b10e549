// Package stats aggregates click records into analytics snapshots.
package stats

import (
	"net/url"
	"sort"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

const (
	topCountriesLimit = 10
	topHoursLimit     = 10
	recentClicksLimit = 10
)

// Aggregate computes a stats snapshot from clicks ordered oldest first.
func Aggregate(linkID string, clicks []*model.Click, window Window) *model.StatsSnapshot {
	snapshot := &model.StatsSnapshot{
		LinkID:      linkID,
		TotalClicks: int64(len(clicks)),
		Devices:     make(map[string]int64),
		Referrers:   make(map[string]int64),
		Window:      window.Info(),
		GeneratedAt: time.Now().UTC(),
	}

	daily := make(map[string]int64)
	var dailyOrder []string

	countries := make(map[string]int64)
	var countryOrder []string

	hours := make(map[int]int64)

	for _, click := range clicks {
		snapshot.Devices[string(click.DeviceType)]++
		snapshot.Referrers[refererKey(click.Referer)]++

		day := click.CreatedAt.Format("2006-01-02")
		if _, seen := daily[day]; !seen {
			dailyOrder = append(dailyOrder, day)
		}
		daily[day]++

		if click.Country != "" {
			if _, seen := countries[click.Country]; !seen {
				countryOrder = append(countryOrder, click.Country)
			}
			countries[click.Country]++
		}

		hours[click.CreatedAt.Hour()]++
	}

	// Clicks arrive oldest first, so first-seen order is chronological.
	sort.Strings(dailyOrder)
	for _, day := range dailyOrder {
		snapshot.Daily = append(snapshot.Daily, model.DailyCount{Date: day, Count: daily[day]})
	}

	snapshot.Countries = topCountries(countries, countryOrder)
	snapshot.TopHours = topHours(hours)
	snapshot.RecentClicks = recentClicks(clicks)

	return snapshot
}

// refererKey normalizes a referrer URL to its host. Empty or
// unparseable referrers count as direct traffic.
func refererKey(referer string) string {
	if referer == "" {
		return "direct"
	}

	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return referer
	}

	return u.Host
}

// topCountries returns the highest-count countries, ties broken by
// first appearance in the click stream.
func topCountries(counts map[string]int64, order []string) []model.CountryCount {
	result := make([]model.CountryCount, 0, len(order))
	for _, country := range order {
		result = append(result, model.CountryCount{Country: country, Count: counts[country]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if len(result) > topCountriesLimit {
		result = result[:topCountriesLimit]
	}

	return result
}

func topHours(counts map[int]int64) []model.HourCount {
	result := make([]model.HourCount, 0, len(counts))
	for hour, count := range counts {
		result = append(result, model.HourCount{Hour: hour, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Hour < result[j].Hour
	})

	if len(result) > topHoursLimit {
		result = result[:topHoursLimit]
	}

	return result
}

// recentClicks returns the newest clicks, newest first.
func recentClicks(clicks []*model.Click) []*model.Click {
	n := len(clicks)
	limit := recentClicksLimit
	if n < limit {
		limit = n
	}

	recent := make([]*model.Click, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recent = append(recent, clicks[i])
	}

	return recent
}
