package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/stats"
)

// Store is the persistence surface the engine needs.
type Store interface {
	ListDueReports(ctx context.Context, now time.Time) ([]*model.ScheduledReport, error)
	UpdateNextSend(ctx context.Context, id string, nextSend time.Time) error
	ListLinksByUser(ctx context.Context, userID string) ([]*model.Link, error)
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	ListClicks(ctx context.Context, linkID string, start, end *time.Time) ([]*model.Click, error)
}

// Notifier delivers generated reports to the owner's webhooks.
type Notifier interface {
	Trigger(ctx context.Context, userID string, event model.EventType, data any)
}

// runTimeout bounds a single engine tick.
const runTimeout = 2 * time.Minute

// Engine runs scheduled reports. A cron ticker fires every minute and
// generates every report whose next send time has passed, so reports
// missed during downtime are delivered on the next tick.
type Engine struct {
	store    Store
	notifier Notifier
	cron     *cron.Cron
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewEngine creates a report Engine.
func NewEngine(store Store, notifier Notifier, logger *slog.Logger, recorder metrics.Recorder) *Engine {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Engine{
		store:    store,
		notifier: notifier,
		cron:     cron.New(),
		logger:   logger.With("component", "report.engine"),
		metrics:  recorder,
	}
}

// Start begins the scheduling loop.
func (e *Engine) Start() error {
	_, err := e.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if err := e.RunDue(ctx, time.Now()); err != nil {
			e.logger.Error("report run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register report schedule: %w", err)
	}

	e.cron.Start()
	e.logger.Info("report engine started")
	return nil
}

// Stop halts the scheduling loop and waits for a running tick.
func (e *Engine) Stop(ctx context.Context) error {
	stopped := e.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunDue generates and delivers every report due at the given time.
func (e *Engine) RunDue(ctx context.Context, now time.Time) error {
	due, err := e.store.ListDueReports(ctx, now)
	if err != nil {
		return fmt.Errorf("list due reports: %w", err)
	}

	for _, schedule := range due {
		if err := e.runOne(ctx, schedule, now); err != nil {
			e.logger.Error("failed to generate report",
				"report_id", schedule.ID,
				"user_id", schedule.UserID,
				"error", err,
			)
			continue
		}

		// Advance the schedule even if webhook delivery later fails:
		// the delivery queue owns retries.
		next := NextSend(now, schedule.Frequency, schedule.DayOfWeek, schedule.DayOfMonth, schedule.Time)
		if err := e.store.UpdateNextSend(ctx, schedule.ID, next); err != nil {
			e.logger.Error("failed to advance report schedule",
				"report_id", schedule.ID,
				"error", err,
			)
		}
	}

	return nil
}

func (e *Engine) runOne(ctx context.Context, schedule *model.ScheduledReport, now time.Time) error {
	links, err := e.resolveLinks(ctx, schedule)
	if err != nil {
		return err
	}

	period := ReportWindow(now, schedule.Frequency)
	data := &model.ReportData{Period: period}

	for _, link := range links {
		clicks, err := e.store.ListClicks(ctx, link.ID, &period.Start, &period.End)
		if err != nil {
			return fmt.Errorf("list clicks for link %s: %w", link.ID, err)
		}

		snapshot := stats.Aggregate(link.ID, clicks, stats.Window{
			Filter: stats.FilterCustom,
			Start:  &period.Start,
			End:    &period.End,
		})

		countries := make(map[string]int64, len(snapshot.Countries))
		for _, c := range snapshot.Countries {
			countries[c.Country] = c.Count
		}

		data.Links = append(data.Links, model.LinkReport{
			LinkID:    link.ID,
			ShortCode: link.ShortCode,
			Title:     link.Title,
			Clicks:    snapshot.TotalClicks,
			Devices:   snapshot.Devices,
			Countries: countries,
		})
		data.TotalClicks += snapshot.TotalClicks
	}

	e.notifier.Trigger(ctx, schedule.UserID, model.EventReportGenerated, map[string]any{
		"report_id": schedule.ID,
		"frequency": schedule.Frequency,
		"format":    schedule.Format,
		"report":    data,
	})

	e.metrics.IncReportGenerated(string(schedule.Frequency))

	e.logger.Info("report generated",
		"report_id", schedule.ID,
		"user_id", schedule.UserID,
		"frequency", schedule.Frequency,
		"links", len(data.Links),
		"total_clicks", data.TotalClicks,
	)

	return nil
}

// resolveLinks returns the links a schedule covers: its explicit list,
// or all of the owner's links when the list is empty. Links that were
// deleted since the schedule was created are skipped.
func (e *Engine) resolveLinks(ctx context.Context, schedule *model.ScheduledReport) ([]*model.Link, error) {
	if len(schedule.LinkIDs) == 0 {
		links, err := e.store.ListLinksByUser(ctx, schedule.UserID)
		if err != nil {
			return nil, fmt.Errorf("list links for user %s: %w", schedule.UserID, err)
		}
		return links, nil
	}

	var links []*model.Link
	for _, id := range schedule.LinkIDs {
		link, err := e.store.GetLinkByID(ctx, id)
		if err != nil {
			e.logger.Warn("skipping report link", "link_id", id, "error", err)
			continue
		}
		if link.UserID != schedule.UserID {
			continue
		}
		links = append(links, link)
	}
	return links, nil
}
