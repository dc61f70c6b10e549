package webhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// Repository handles webhook database operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new webhook repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWebhook creates a new webhook.
func (r *Repository) CreateWebhook(ctx context.Context, webhook *model.Webhook) error {
	query := `
		INSERT INTO webhooks (
			id, user_id, url, events, secret, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	events := make([]string, len(webhook.Events))
	for i, et := range webhook.Events {
		events[i] = string(et)
	}

	_, err := r.db.ExecContext(ctx, query,
		webhook.ID,
		webhook.UserID,
		webhook.URL,
		pq.Array(events),
		webhook.Secret,
		webhook.IsActive,
		webhook.CreatedAt,
		webhook.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

// GetWebhook retrieves a webhook by ID.
func (r *Repository) GetWebhook(ctx context.Context, id string) (*model.Webhook, error) {
	query := `
		SELECT id, user_id, url, events, secret, is_active, last_trigger,
			   created_at, updated_at
		FROM webhooks
		WHERE id = $1
	`

	webhook, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWebhookNotFound
		}
		return nil, fmt.Errorf("query webhook: %w", err)
	}
	return webhook, nil
}

// ListWebhooksByUser retrieves all webhooks owned by a user.
func (r *Repository) ListWebhooksByUser(ctx context.Context, userID string) ([]*model.Webhook, error) {
	query := `
		SELECT id, user_id, url, events, secret, is_active, last_trigger,
			   created_at, updated_at
		FROM webhooks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query webhooks by user: %w", err)
	}
	defer rows.Close()

	var webhooks []*model.Webhook
	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, webhook)
	}
	return webhooks, rows.Err()
}

// ListActiveByUserAndEvent retrieves active webhooks owned by a user
// that subscribe to the given event type.
func (r *Repository) ListActiveByUserAndEvent(ctx context.Context, userID string, event model.EventType) ([]*model.Webhook, error) {
	query := `
		SELECT id, user_id, url, events, secret, is_active, last_trigger,
			   created_at, updated_at
		FROM webhooks
		WHERE user_id = $1 AND is_active = TRUE AND $2 = ANY(events)
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(event))
	if err != nil {
		return nil, fmt.Errorf("query webhooks by event: %w", err)
	}
	defer rows.Close()

	var webhooks []*model.Webhook
	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, webhook)
	}
	return webhooks, rows.Err()
}

// UpdateWebhook updates a webhook's URL, events, and active flag.
// The secret is immutable after creation.
func (r *Repository) UpdateWebhook(ctx context.Context, webhook *model.Webhook) error {
	query := `
		UPDATE webhooks
		SET url = $2, events = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
	`

	events := make([]string, len(webhook.Events))
	for i, et := range webhook.Events {
		events[i] = string(et)
	}

	result, err := r.db.ExecContext(ctx, query,
		webhook.ID,
		webhook.URL,
		pq.Array(events),
		webhook.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrWebhookNotFound
	}
	return nil
}

// DeleteWebhook removes a webhook and its delivery history.
func (r *Repository) DeleteWebhook(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrWebhookNotFound
	}
	return nil
}

// TouchLastTrigger records when the webhook was last called.
func (r *Repository) TouchLastTrigger(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhooks SET last_trigger = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last trigger: %w", err)
	}
	return nil
}

// CreateDelivery enqueues a delivery.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *model.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (
			id, webhook_id, event, payload_json, status, attempt_count,
			max_attempts, next_retry_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.WebhookID,
		string(delivery.Event),
		delivery.PayloadJSON,
		string(delivery.Status),
		delivery.AttemptCount,
		delivery.MaxAttempts,
		delivery.NextRetryAt,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// GetPendingDeliveries fetches deliveries due for an attempt, oldest
// first. FOR UPDATE SKIP LOCKED keeps concurrent workers from picking
// the same rows.
func (r *Repository) GetPendingDeliveries(ctx context.Context, limit int) ([]*model.WebhookDelivery, error) {
	query := `
		SELECT id, webhook_id, event, payload_json, status, attempt_count,
			   max_attempts, next_retry_at, last_attempt_at, last_http_status,
			   last_error, created_at, updated_at
		FROM webhook_deliveries
		WHERE status IN ('pending', 'failed') AND next_retry_at <= NOW()
		ORDER BY next_retry_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*model.WebhookDelivery
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, rows.Err()
}

// UpdateDeliverySuccess marks a delivery as delivered.
func (r *Repository) UpdateDeliverySuccess(ctx context.Context, id string, httpStatus int) error {
	query := `
		UPDATE webhook_deliveries
		SET status = 'success', attempt_count = attempt_count + 1,
			last_attempt_at = NOW(), last_http_status = $2, last_error = '',
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, httpStatus)
	if err != nil {
		return fmt.Errorf("update delivery success: %w", err)
	}
	return nil
}

// UpdateDeliveryFailure records a failed attempt. When exhausted is
// true the delivery is dead-lettered and never retried.
func (r *Repository) UpdateDeliveryFailure(ctx context.Context, id string, httpStatus *int, lastError string, nextRetryAt time.Time, exhausted bool) error {
	status := string(model.DeliveryStatusFailed)
	if exhausted {
		status = string(model.DeliveryStatusExhausted)
	}

	query := `
		UPDATE webhook_deliveries
		SET status = $2, attempt_count = attempt_count + 1,
			last_attempt_at = NOW(), last_http_status = $3, last_error = $4,
			next_retry_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, httpStatus, lastError, nextRetryAt)
	if err != nil {
		return fmt.Errorf("update delivery failure: %w", err)
	}
	return nil
}

// GetQueueDepth counts deliveries waiting for an attempt.
func (r *Repository) GetQueueDepth(ctx context.Context) (int64, error) {
	var depth int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM webhook_deliveries WHERE status IN ('pending', 'failed')`,
	).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("count pending deliveries: %w", err)
	}
	return depth, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhook(row rowScanner) (*model.Webhook, error) {
	var webhook model.Webhook
	var events []string

	err := row.Scan(
		&webhook.ID,
		&webhook.UserID,
		&webhook.URL,
		pq.Array(&events),
		&webhook.Secret,
		&webhook.IsActive,
		&webhook.LastTrigger,
		&webhook.CreatedAt,
		&webhook.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	webhook.Events = make([]model.EventType, len(events))
	for i, et := range events {
		webhook.Events[i] = model.EventType(et)
	}
	return &webhook, nil
}

func scanDelivery(row rowScanner) (*model.WebhookDelivery, error) {
	var delivery model.WebhookDelivery
	var event, status string

	err := row.Scan(
		&delivery.ID,
		&delivery.WebhookID,
		&event,
		&delivery.PayloadJSON,
		&status,
		&delivery.AttemptCount,
		&delivery.MaxAttempts,
		&delivery.NextRetryAt,
		&delivery.LastAttemptAt,
		&delivery.LastHTTPStatus,
		&delivery.LastError,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	delivery.Event = model.EventType(event)
	delivery.Status = model.DeliveryStatus(status)
	return &delivery, nil
}
