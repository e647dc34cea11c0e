package payment

import (
	"context"
	"strings"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"

	"payflow/internal/models"
)

// StripeAuthorizer charges through Stripe PaymentIntents. Selected with
// PAYMENT_AUTHORIZER=stripe; amounts are converted to the smallest currency
// unit as Stripe expects.
type StripeAuthorizer struct {
	apiKey string
}

func NewStripeAuthorizer(apiKey string) *StripeAuthorizer {
	return &StripeAuthorizer{apiKey: apiKey}
}

func (a *StripeAuthorizer) Authorize(ctx context.Context, t *models.Transaction) (Outcome, error) {
	stripe.Key = a.apiKey

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(t.Amount * 100)),
		Currency:      stripe.String(strings.ToLower(t.Currency)),
		Description:   stripe.String(t.Description),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(t.PaymentDetails.String("payment_method_id")),
	}
	params.Context = ctx
	params.AddMetadata("order_id", t.OrderID)

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return Outcome{Approved: false, Reason: stripeErr.Msg}, nil
		}
		return Outcome{}, err
	}

	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		return Outcome{Approved: true, Reference: pi.ID}, nil
	}
	return Outcome{Approved: false, Reason: "payment not completed: " + string(pi.Status), Reference: pi.ID}, nil
}
