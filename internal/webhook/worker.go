package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

const (
	// DefaultBatchSize is the number of deliveries to process per poll.
	DefaultBatchSize = 50
	// DefaultPollInterval is the time between polling for pending deliveries.
	DefaultPollInterval = 5 * time.Second
	// DefaultMetricsInterval is how often to update queue depth metrics.
	DefaultMetricsInterval = 10 * time.Second
)

// Worker processes webhook deliveries.
type Worker struct {
	repo            *Repository
	client          *http.Client
	logger          *slog.Logger
	metrics         metrics.Recorder
	batchSize       int
	pollInterval    time.Duration
	metricsInterval time.Duration
	lastMetrics     time.Time
	started         bool
}

// NewWorker creates a new webhook delivery worker.
func NewWorker(repo *Repository, logger *slog.Logger, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		repo:            repo,
		client:          NewHTTPClient(),
		logger:          logger.With("component", "webhook.worker"),
		metrics:         recorder,
		batchSize:       DefaultBatchSize,
		pollInterval:    DefaultPollInterval,
		metricsInterval: DefaultMetricsInterval,
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.started {
		return errors.New("worker already started")
	}
	w.started = true

	w.logger.Info("webhook worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
			}
		}
	}
}

// processOnce fetches and processes a batch of pending deliveries.
func (w *Worker) processOnce(ctx context.Context) error {
	w.maybeUpdateQueueDepth(ctx)

	deliveries, err := w.repo.GetPendingDeliveries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending deliveries: %w", err)
	}

	for _, delivery := range deliveries {
		if err := w.deliver(ctx, delivery); err != nil {
			w.logger.Warn("delivery failed",
				"delivery_id", delivery.ID,
				"error", err,
			)
		}
	}

	return nil
}

// deliver attempts to send a single webhook.
func (w *Worker) deliver(ctx context.Context, delivery *model.WebhookDelivery) error {
	webhook, err := w.repo.GetWebhook(ctx, delivery.WebhookID)
	if err != nil {
		if errors.Is(err, ErrWebhookNotFound) {
			// Webhook deleted, dead-letter the delivery
			return w.repo.UpdateDeliveryFailure(ctx, delivery.ID, nil, "webhook deleted", time.Now(), true)
		}
		return err
	}

	if !webhook.IsActive {
		return w.repo.UpdateDeliveryFailure(ctx, delivery.ID, nil, "webhook disabled", time.Now(), true)
	}

	body := []byte(delivery.PayloadJSON)
	signature := Sign(webhook.Secret, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, strings.NewReader(delivery.PayloadJSON))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	SetDeliveryHeaders(req, signature)

	start := time.Now()
	resp, err := w.client.Do(req)
	duration := time.Since(start)

	w.metrics.ObserveWebhookDeliveryDuration(webhook.ID, duration)

	// last_trigger reflects every completed HTTP call, success or not
	if touchErr := w.repo.TouchLastTrigger(ctx, webhook.ID, time.Now().UTC()); touchErr != nil {
		w.logger.Warn("failed to update last trigger", "webhook_id", webhook.ID, "error", touchErr)
	}

	if err != nil {
		return w.handleDeliveryError(ctx, delivery, nil, err.Error())
	}
	defer resp.Body.Close()

	// Drain body to allow connection reuse
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		w.logger.Info("webhook delivered",
			"delivery_id", delivery.ID,
			"webhook_id", webhook.ID,
			"event", delivery.Event,
			"http_status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)
		w.metrics.IncWebhookDelivery("success", webhook.ID)
		return w.repo.UpdateDeliverySuccess(ctx, delivery.ID, resp.StatusCode)
	}

	return w.handleDeliveryError(ctx, delivery, &resp.StatusCode, fmt.Sprintf("HTTP %d", resp.StatusCode))
}

// handleDeliveryError updates delivery status after a failed attempt.
func (w *Worker) handleDeliveryError(ctx context.Context, delivery *model.WebhookDelivery, httpStatus *int, errMsg string) error {
	nextAttempt := delivery.AttemptCount + 1
	exhausted := IsExhausted(nextAttempt, delivery.MaxAttempts)

	status := "failed"
	if exhausted {
		status = "exhausted"
		w.logger.Error("webhook delivery dead-lettered",
			"delivery_id", delivery.ID,
			"webhook_id", delivery.WebhookID,
			"event", delivery.Event,
			"attempts", nextAttempt,
			"error", errMsg,
		)
	} else {
		w.logger.Warn("webhook delivery failed",
			"delivery_id", delivery.ID,
			"attempt", nextAttempt,
			"error", errMsg,
		)
	}

	w.metrics.IncWebhookDelivery(status, delivery.WebhookID)

	nextRetryAt := NextRetryAt(nextAttempt)
	return w.repo.UpdateDeliveryFailure(ctx, delivery.ID, httpStatus, errMsg, nextRetryAt, exhausted)
}

// maybeUpdateQueueDepth periodically updates queue depth metric.
func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	depth, err := w.repo.GetQueueDepth(ctx)
	if err != nil {
		w.logger.Warn("failed to get queue depth", "error", err)
		return
	}
	w.metrics.SetWebhookQueueDepth(depth)
}

// SetPollInterval overrides the default poll interval.
func (w *Worker) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		w.pollInterval = interval
	}
}
