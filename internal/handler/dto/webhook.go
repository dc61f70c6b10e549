package dto

import (
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// CreateWebhookRequest represents the request body for registering a webhook.
type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// UpdateWebhookRequest represents the request body for updating a webhook.
type UpdateWebhookRequest struct {
	URL      *string   `json:"url,omitempty"`
	Events   *[]string `json:"events,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// WebhookResponse represents a webhook in API responses. The signing
// secret is only present in the creation response.
type WebhookResponse struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Events      []string   `json:"events"`
	Secret      string     `json:"secret,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastTrigger *time.Time `json:"last_trigger,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WebhookListResponse represents a list of webhooks.
type WebhookListResponse struct {
	Data []*WebhookResponse `json:"data"`
}

// ToWebhookResponse converts a Webhook model to its DTO. Pass
// includeSecret only on creation.
func ToWebhookResponse(webhook *model.Webhook, includeSecret bool) *WebhookResponse {
	events := make([]string, len(webhook.Events))
	for i, et := range webhook.Events {
		events[i] = string(et)
	}

	resp := &WebhookResponse{
		ID:          webhook.ID,
		URL:         webhook.URL,
		Events:      events,
		IsActive:    webhook.IsActive,
		LastTrigger: webhook.LastTrigger,
		CreatedAt:   webhook.CreatedAt,
		UpdatedAt:   webhook.UpdatedAt,
	}
	if includeSecret {
		resp.Secret = webhook.Secret
	}
	return resp
}
