package stats

import (
	"errors"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	t.Run("empty filter defaults to all", func(t *testing.T) {
		t.Parallel()

		w, err := ParseWindow("", "", "", now)
		if err != nil {
			t.Fatalf("ParseWindow() error = %v", err)
		}
		if w.Filter != FilterAll || w.Start != nil || w.End != nil {
			t.Errorf("ParseWindow() = %+v, want unbounded all", w)
		}
	})

	t.Run("today starts at midnight", func(t *testing.T) {
		t.Parallel()

		w, err := ParseWindow(FilterToday, "", "", now)
		if err != nil {
			t.Fatalf("ParseWindow() error = %v", err)
		}
		want := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
		if w.Start == nil || !w.Start.Equal(want) {
			t.Errorf("Start = %v, want %v", w.Start, want)
		}
		if w.End != nil {
			t.Errorf("End = %v, want nil", w.End)
		}
	})

	t.Run("7d window", func(t *testing.T) {
		t.Parallel()

		w, err := ParseWindow(Filter7Days, "", "", now)
		if err != nil {
			t.Fatalf("ParseWindow() error = %v", err)
		}
		want := now.AddDate(0, 0, -7)
		if w.Start == nil || !w.Start.Equal(want) {
			t.Errorf("Start = %v, want %v", w.Start, want)
		}
	})

	t.Run("custom range inclusive of to day", func(t *testing.T) {
		t.Parallel()

		w, err := ParseWindow(FilterCustom, "2026-08-01", "2026-08-15", now)
		if err != nil {
			t.Fatalf("ParseWindow() error = %v", err)
		}
		wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
		if w.Start == nil || !w.Start.Equal(wantStart) {
			t.Errorf("Start = %v, want %v", w.Start, wantStart)
		}
		if w.End == nil || !w.End.Equal(wantEnd) {
			t.Errorf("End = %v, want %v", w.End, wantEnd)
		}
	})

	t.Run("custom same day is valid", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseWindow(FilterCustom, "2026-08-10", "2026-08-10", now); err != nil {
			t.Errorf("ParseWindow() error = %v", err)
		}
	})

	invalid := []struct {
		name   string
		filter string
		from   string
		to     string
	}{
		{name: "unknown filter", filter: "yesterday"},
		{name: "custom missing dates", filter: FilterCustom},
		{name: "custom bad from", filter: FilterCustom, from: "08/01/2026", to: "2026-08-15"},
		{name: "custom bad to", filter: FilterCustom, from: "2026-08-01", to: "not-a-date"},
		{name: "custom reversed range", filter: FilterCustom, from: "2026-08-15", to: "2026-08-01"},
	}

	for _, tt := range invalid {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseWindow(tt.filter, tt.from, tt.to, now)
			if !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("ParseWindow() error = %v, want ErrInvalidWindow", err)
			}
		})
	}
}
