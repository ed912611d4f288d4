package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway constructs the provider client. Live-mode keys are refused;
// this service only ever talks to the test environment.
func NewStripeGateway(secretKey, webhookSecret string) (*StripeGateway, error) {
	if !strings.HasPrefix(secretKey, "sk_test_") {
		return nil, fmt.Errorf("stripe must be configured with a test key (sk_test_...)")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}, nil
}

// RetrieveIntent fetches the PaymentIntent from Stripe.
func (g *StripeGateway) RetrieveIntent(id string) (*Intent, error) {
	pi, err := g.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return &Intent{
		ID:          pi.ID,
		Status:      string(pi.Status),
		AmountCents: pi.Amount,
		Currency:    strings.ToLower(string(pi.Currency)),
	}, nil
}

// VerifyWebhook validates the Stripe-Signature header against the signing
// secret and decodes the event payload.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, err
	}

	ev := &WebhookEvent{Type: string(event.Type)}
	if strings.HasPrefix(ev.Type, "payment_intent.") {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent payload: %w", err)
		}
		ev.Intent = Intent{
			ID:          pi.ID,
			Status:      string(pi.Status),
			AmountCents: pi.Amount,
			Currency:    strings.ToLower(string(pi.Currency)),
		}
	}
	return ev, nil
}

// DeriveIntentID extracts the payment intent id from a client secret by taking
// the prefix before the "_secret" separator. Returns "" when it cannot.
func DeriveIntentID(clientSecret string) string {
	idx := strings.Index(clientSecret, "_secret")
	if idx <= 0 {
		return ""
	}
	return clientSecret[:idx]
}
