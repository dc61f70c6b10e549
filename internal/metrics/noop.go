package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRedirect is a no-op.
func (n *NoopRecorder) IncRedirect(outcome string) {}

// IncRedirectCacheHit is a no-op.
func (n *NoopRecorder) IncRedirectCacheHit() {}

// IncRedirectCacheMiss is a no-op.
func (n *NoopRecorder) IncRedirectCacheMiss() {}

// ObserveRedirectDuration is a no-op.
func (n *NoopRecorder) ObserveRedirectDuration(duration time.Duration) {}

// IncLinkCreated is a no-op.
func (n *NoopRecorder) IncLinkCreated() {}

// IncLinkUpdated is a no-op.
func (n *NoopRecorder) IncLinkUpdated() {}

// IncLinkDeleted is a no-op.
func (n *NoopRecorder) IncLinkDeleted() {}

// IncClickRecorded is a no-op.
func (n *NoopRecorder) IncClickRecorded(status string) {}

// IncRealtimeSubscription is a no-op.
func (n *NoopRecorder) IncRealtimeSubscription() {}

// DecRealtimeSubscription is a no-op.
func (n *NoopRecorder) DecRealtimeSubscription() {}

// IncWebhookDelivery is a no-op.
func (n *NoopRecorder) IncWebhookDelivery(status string, webhookID string) {}

// ObserveWebhookDeliveryDuration is a no-op.
func (n *NoopRecorder) ObserveWebhookDeliveryDuration(webhookID string, duration time.Duration) {}

// SetWebhookQueueDepth is a no-op.
func (n *NoopRecorder) SetWebhookQueueDepth(depth int64) {}

// IncReportGenerated is a no-op.
func (n *NoopRecorder) IncReportGenerated(frequency string) {}
