package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// Window filter names accepted by the stats endpoints.
const (
	FilterAll    = "all"
	FilterToday  = "today"
	Filter7Days  = "7d"
	Filter30Days = "30d"
	FilterCustom = "custom"
)

// ErrInvalidWindow indicates an unrecognized filter or bad custom range.
var ErrInvalidWindow = errors.New("invalid stats window")

// Window is a resolved time range for click aggregation. A nil Start
// or End means unbounded on that side.
type Window struct {
	Filter string
	Start  *time.Time
	End    *time.Time
}

// Info returns the window in its API representation.
func (w Window) Info() model.WindowInfo {
	return model.WindowInfo{Filter: w.Filter, Start: w.Start, End: w.End}
}

// ParseWindow resolves query parameters into a Window relative to now.
// Custom windows require from/to in YYYY-MM-DD form; the to date is
// inclusive of the whole day.
func ParseWindow(filter, from, to string, now time.Time) (Window, error) {
	if filter == "" {
		filter = FilterAll
	}

	switch filter {
	case FilterAll:
		return Window{Filter: FilterAll}, nil

	case FilterToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Filter: FilterToday, Start: &start}, nil

	case Filter7Days:
		start := now.AddDate(0, 0, -7)
		return Window{Filter: Filter7Days, Start: &start}, nil

	case Filter30Days:
		start := now.AddDate(0, 0, -30)
		return Window{Filter: Filter30Days, Start: &start}, nil

	case FilterCustom:
		if from == "" || to == "" {
			return Window{}, fmt.Errorf("%w: custom range requires from and to", ErrInvalidWindow)
		}

		start, err := time.ParseInLocation("2006-01-02", from, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("%w: bad from date %q", ErrInvalidWindow, from)
		}

		endDay, err := time.ParseInLocation("2006-01-02", to, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("%w: bad to date %q", ErrInvalidWindow, to)
		}

		end := endDay.AddDate(0, 0, 1)
		if end.Before(start) {
			return Window{}, fmt.Errorf("%w: to date before from date", ErrInvalidWindow)
		}

		return Window{Filter: FilterCustom, Start: &start, End: &end}, nil

	default:
		return Window{}, fmt.Errorf("%w: unknown filter %q", ErrInvalidWindow, filter)
	}
}
