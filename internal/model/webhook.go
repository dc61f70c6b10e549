// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// EventType represents webhook event types.
type EventType string

const (
	EventLinkCreated     EventType = "link_created"
	EventLinkUpdated     EventType = "link_updated"
	EventLinkDeleted     EventType = "link_deleted"
	EventNewClick        EventType = "new_click"
	EventReportGenerated EventType = "report_generated"
)

// ValidEventTypes contains all valid event types.
var ValidEventTypes = []EventType{
	EventLinkCreated,
	EventLinkUpdated,
	EventLinkDeleted,
	EventNewClick,
	EventReportGenerated,
}

// IsValidEventType checks if an event type is valid.
func IsValidEventType(et EventType) bool {
	return slices.Contains(ValidEventTypes, et)
}

// Webhook represents a user-registered callback target.
type Webhook struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	URL    string `json:"url"`

	// Events the endpoint subscribes to.
	Events []EventType `json:"events"`

	// Secret signs outbound payloads; never exposed after creation.
	Secret string `json:"-"`

	IsActive    bool       `json:"is_active"`
	LastTrigger *time.Time `json:"last_trigger,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscribesTo checks if the webhook subscribes to the given event type.
func (w *Webhook) SubscribesTo(et EventType) bool {
	return slices.Contains(w.Events, et)
}

// DeliveryStatus represents webhook delivery state.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusSuccess   DeliveryStatus = "success"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusExhausted DeliveryStatus = "exhausted"
)

// WebhookDelivery represents one queued outbound callback.
// Deliveries decouple webhook HTTP calls from the mutation that
// triggered them: the trigger path only enqueues.
type WebhookDelivery struct {
	ID             string         `json:"id"`
	WebhookID      string         `json:"webhook_id"`
	Event          EventType      `json:"event"`
	PayloadJSON    string         `json:"-"`
	Status         DeliveryStatus `json:"status"`
	AttemptCount   int            `json:"attempt_count"`
	MaxAttempts    int            `json:"max_attempts"`
	NextRetryAt    time.Time      `json:"next_retry_at,omitempty"`
	LastAttemptAt  *time.Time     `json:"last_attempt_at,omitempty"`
	LastHTTPStatus *int           `json:"last_http_status,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsTerminal returns true if delivery is in a terminal state.
func (d *WebhookDelivery) IsTerminal() bool {
	return d.Status == DeliveryStatusSuccess || d.Status == DeliveryStatusExhausted
}

// WebhookPayload is the JSON envelope POSTed to webhook endpoints.
type WebhookPayload struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
