package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// PaymentIntentCreator is the payment-provider boundary: given an amount it
// returns an intent reference and the client secret the browser completes
// payment with. The default implementation talks to Stripe; tests swap it out
// with NewPaymentIntents.
type PaymentIntentCreator interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (ref string, clientSecret string, err error)
}

var paymentIntents PaymentIntentCreator

func GetPaymentIntents() PaymentIntentCreator {
	if paymentIntents != nil {
		return paymentIntents
	}
	paymentIntents = &stripePaymentIntents{}
	return paymentIntents
}

func NewPaymentIntents(c PaymentIntentCreator) {
	paymentIntents = c
}

type stripePaymentIntents struct{}

func (s *stripePaymentIntents) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
	}
	pi, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}
