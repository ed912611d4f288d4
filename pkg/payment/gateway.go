// Package payment wraps the payment provider behind a small gateway interface
// so the reconciliation handlers can be exercised without network access.
package payment

import "storefront-service/internal/model"

// EventTypeIntentSucceeded is the only webhook event type that triggers writes.
const EventTypeIntentSucceeded = "payment_intent.succeeded"

// Intent is the provider-side transaction state needed for reconciliation.
// Status carries the provider's own vocabulary; MapIntentStatus folds it onto
// the local one.
type Intent struct {
	ID          string
	Status      string
	AmountCents int64
	Currency    string
}

// WebhookEvent is a verified provider notification. Intent is only populated
// for payment-intent event types.
type WebhookEvent struct {
	Type   string
	Intent Intent
}

// Gateway is the outbound surface of the payment provider. The concrete Stripe
// implementation is constructed once at startup and passed explicitly to the
// payments handler.
type Gateway interface {
	// RetrieveIntent fetches live transaction state from the provider.
	RetrieveIntent(id string) (*Intent, error)
	// VerifyWebhook checks the notification signature against the configured
	// secret and decodes the event. A signature mismatch returns an error.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// MapIntentStatus maps the provider's intent status vocabulary onto the local
// four-state payment vocabulary. Every state that needs further customer
// action collapses to requires_action.
func MapIntentStatus(s string) string {
	switch s {
	case "succeeded":
		return model.PaymentStatusSucceeded
	case "processing":
		return model.PaymentStatusProcessing
	case "canceled":
		return model.PaymentStatusCanceled
	default:
		// requires_action, requires_payment_method, requires_capture,
		// requires_confirmation and anything the provider adds later
		return model.PaymentStatusRequiresAction
	}
}
