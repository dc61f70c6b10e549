package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// enqueueTimeout bounds the background enqueue work.
const enqueueTimeout = 10 * time.Second

// Dispatcher fans domain events out to matching webhooks by enqueueing
// durable deliveries. The actual HTTP calls happen in the Worker.
type Dispatcher struct {
	repo   *Repository
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(repo *Repository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		logger: logger.With("component", "webhook.dispatcher"),
	}
}

// Trigger enqueues one delivery per active webhook the user has
// subscribed to this event. It never blocks the caller: enqueueing
// runs in the background and failures are logged, not returned.
func (d *Dispatcher) Trigger(ctx context.Context, userID string, event model.EventType, data any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
		defer cancel()

		if err := d.enqueue(ctx, userID, event, data); err != nil {
			d.logger.Error("failed to enqueue webhook deliveries",
				"user_id", userID,
				"event", event,
				"error", err,
			)
		}
	}()
}

func (d *Dispatcher) enqueue(ctx context.Context, userID string, event model.EventType, data any) error {
	webhooks, err := d.repo.ListActiveByUserAndEvent(ctx, userID, event)
	if err != nil {
		return err
	}
	if len(webhooks) == 0 {
		return nil
	}

	payload, err := json.Marshal(model.WebhookPayload{
		Event:     string(event),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, hook := range webhooks {
		delivery := &model.WebhookDelivery{
			ID:          uuid.NewString(),
			WebhookID:   hook.ID,
			Event:       event,
			PayloadJSON: string(payload),
			Status:      model.DeliveryStatusPending,
			MaxAttempts: DefaultMaxAttempts,
			NextRetryAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := d.repo.CreateDelivery(ctx, delivery); err != nil {
			d.logger.Error("failed to enqueue delivery",
				"webhook_id", hook.ID,
				"event", event,
				"error", err,
			)
			continue
		}

		d.logger.Debug("delivery enqueued",
			"delivery_id", delivery.ID,
			"webhook_id", hook.ID,
			"event", event,
		)
	}

	return nil
}
