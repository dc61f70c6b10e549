package webhook

import "errors"

// Sentinel errors for webhook operations.
var (
	ErrWebhookNotFound  = errors.New("webhook not found")
	ErrDeliveryNotFound = errors.New("webhook delivery not found")
)
