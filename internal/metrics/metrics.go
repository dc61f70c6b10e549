// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Redirect metrics
	IncRedirect(outcome string)
	IncRedirectCacheHit()
	IncRedirectCacheMiss()
	ObserveRedirectDuration(duration time.Duration)

	// Link management metrics
	IncLinkCreated()
	IncLinkUpdated()
	IncLinkDeleted()

	// Click pipeline metrics
	IncClickRecorded(status string) // status: "success" or "failed"

	// Realtime metrics
	IncRealtimeSubscription()
	DecRealtimeSubscription()

	// Webhook delivery metrics
	IncWebhookDelivery(status string, webhookID string)
	ObserveWebhookDeliveryDuration(webhookID string, duration time.Duration)
	SetWebhookQueueDepth(depth int64)

	// Report metrics
	IncReportGenerated(frequency string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
