package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Redirects               uint64
	RedirectCacheHits       uint64
	RedirectCacheMisses     uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
	LinksCreated            uint64
	LinksUpdated            uint64
	LinksDeleted            uint64
	ClicksRecorded          uint64
	ClicksFailed            uint64
	RealtimeSubscriptions   int64
	WebhookDeliveries       uint64
	WebhookQueueDepth       int64
	ReportsGenerated        uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	redirects               uint64
	redirectCacheHits       uint64
	redirectCacheMisses     uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
	linksCreated            uint64
	linksUpdated            uint64
	linksDeleted            uint64
	clicksRecorded          uint64
	clicksFailed            uint64
	realtimeSubscriptions   int64
	webhookDeliveries       uint64
	webhookQueueDepth       int64
	reportsGenerated        uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Redirects:               atomic.LoadUint64(&m.redirects),
		RedirectCacheHits:       atomic.LoadUint64(&m.redirectCacheHits),
		RedirectCacheMisses:     atomic.LoadUint64(&m.redirectCacheMisses),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
		LinksCreated:            atomic.LoadUint64(&m.linksCreated),
		LinksUpdated:            atomic.LoadUint64(&m.linksUpdated),
		LinksDeleted:            atomic.LoadUint64(&m.linksDeleted),
		ClicksRecorded:          atomic.LoadUint64(&m.clicksRecorded),
		ClicksFailed:            atomic.LoadUint64(&m.clicksFailed),
		RealtimeSubscriptions:   atomic.LoadInt64(&m.realtimeSubscriptions),
		WebhookDeliveries:       atomic.LoadUint64(&m.webhookDeliveries),
		WebhookQueueDepth:       atomic.LoadInt64(&m.webhookQueueDepth),
		ReportsGenerated:        atomic.LoadUint64(&m.reportsGenerated),
	}
}

// IncRedirect increments the redirect counter.
func (m *InMemoryRecorder) IncRedirect(outcome string) {
	atomic.AddUint64(&m.redirects, 1)
}

// IncRedirectCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncRedirectCacheHit() {
	atomic.AddUint64(&m.redirectCacheHits, 1)
}

// IncRedirectCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncRedirectCacheMiss() {
	atomic.AddUint64(&m.redirectCacheMisses, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncLinkCreated increments link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncLinkUpdated increments link updated counter.
func (m *InMemoryRecorder) IncLinkUpdated() {
	atomic.AddUint64(&m.linksUpdated, 1)
}

// IncLinkDeleted increments link deleted counter.
func (m *InMemoryRecorder) IncLinkDeleted() {
	atomic.AddUint64(&m.linksDeleted, 1)
}

// IncClickRecorded increments the click pipeline counters.
func (m *InMemoryRecorder) IncClickRecorded(status string) {
	if status == "success" {
		atomic.AddUint64(&m.clicksRecorded, 1)
		return
	}
	atomic.AddUint64(&m.clicksFailed, 1)
}

// IncRealtimeSubscription increments the active subscription gauge.
func (m *InMemoryRecorder) IncRealtimeSubscription() {
	atomic.AddInt64(&m.realtimeSubscriptions, 1)
}

// DecRealtimeSubscription decrements the active subscription gauge.
func (m *InMemoryRecorder) DecRealtimeSubscription() {
	atomic.AddInt64(&m.realtimeSubscriptions, -1)
}

// IncWebhookDelivery increments the webhook delivery counter.
func (m *InMemoryRecorder) IncWebhookDelivery(status string, webhookID string) {
	atomic.AddUint64(&m.webhookDeliveries, 1)
}

// ObserveWebhookDeliveryDuration is recorded only in count form.
func (m *InMemoryRecorder) ObserveWebhookDeliveryDuration(webhookID string, duration time.Duration) {}

// SetWebhookQueueDepth records the pending delivery count.
func (m *InMemoryRecorder) SetWebhookQueueDepth(depth int64) {
	atomic.StoreInt64(&m.webhookQueueDepth, depth)
}

// IncReportGenerated increments the report counter.
func (m *InMemoryRecorder) IncReportGenerated(frequency string) {
	atomic.AddUint64(&m.reportsGenerated, 1)
}
