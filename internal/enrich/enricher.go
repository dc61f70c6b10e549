// Package enrich turns raw redirect requests into enriched click records.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// ClickStore persists click records.
type ClickStore interface {
	InsertClick(ctx context.Context, click *model.Click) error
}

// Publisher fans a recorded click out to realtime subscribers.
type Publisher interface {
	Publish(ctx context.Context, linkID string, click *model.Click) error
}

// Notifier triggers webhook deliveries for a recorded click.
type Notifier interface {
	Trigger(ctx context.Context, userID string, event model.EventType, data any)
}

// Enricher records clicks with device, geo, and referrer context.
// All of its failures are absorbed: a click that cannot be enriched or
// stored never affects the visitor's redirect.
type Enricher struct {
	clicks    ClickStore
	geo       *GeoClient
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// New creates an Enricher. publisher, notifier, and recorder may be nil.
func New(clicks ClickStore, geo *GeoClient, publisher Publisher, notifier Notifier, logger *slog.Logger, recorder metrics.Recorder) *Enricher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Enricher{
		clicks:    clicks,
		geo:       geo,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger.With("component", "enricher"),
		metrics:   recorder,
	}
}

// RawClick carries the request attributes captured at redirect time.
type RawClick struct {
	IP        string
	UserAgent string
	Referer   string
}

// Record enriches and persists a click for the given link, then fans
// it out to realtime subscribers and webhooks. Designed to run in a
// goroutine after the redirect response has been written, so the ctx
// must not be the request context.
func (e *Enricher) Record(ctx context.Context, link *model.Link, raw RawClick) {
	device, os, browser := ParseUserAgent(raw.UserAgent)

	var country, city string
	if e.geo != nil {
		country, city = e.geo.Lookup(ctx, raw.IP)
	}

	click := &model.Click{
		ID:         ulid.Make().String(),
		LinkID:     link.ID,
		IP:         raw.IP,
		UserAgent:  raw.UserAgent,
		Referer:    raw.Referer,
		DeviceType: device,
		OS:         os,
		Browser:    browser,
		Country:    country,
		City:       city,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.clicks.InsertClick(ctx, click); err != nil {
		e.metrics.IncClickRecorded("failed")
		e.logger.Error("failed to store click",
			"link_id", link.ID,
			"short_code", link.ShortCode,
			"error", err,
		)
		return
	}
	e.metrics.IncClickRecorded("success")

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, link.ID, click); err != nil {
			e.logger.Warn("failed to publish click", "link_id", link.ID, "error", err)
		}
	}

	if e.notifier != nil {
		e.notifier.Trigger(ctx, link.UserID, model.EventNewClick, map[string]any{
			"link_id":     link.ID,
			"short_code":  link.ShortCode,
			"click_id":    click.ID,
			"device_type": click.DeviceType,
			"country":     click.Country,
			"city":        click.City,
			"referer":     click.Referer,
			"clicked_at":  click.CreatedAt,
		})
	}

	e.logger.Debug("click recorded",
		"link_id", link.ID,
		"click_id", click.ID,
		"device", click.DeviceType,
		"country", click.Country,
	)
}
