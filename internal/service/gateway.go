package service

import (
	"context"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ChargeRequest describes one settlement charge against a stored payment
// method.
type ChargeRequest struct {
	AmountMinorUnits   int64
	Currency           string
	PaymentMethodToken string
	GatewayCustomerKey string
	Description        string
}

// ChargeResult is the gateway's answer. A failed charge is not an error at
// the transport level; Succeeded is false and FailureMessage explains why.
type ChargeResult struct {
	Succeeded      bool
	PaymentID      string
	FailureMessage string
}

// PaymentGateway is the interface to the external payment provider. Token
// issuance and card storage live entirely at the provider.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// StripeGateway charges through Stripe PaymentIntents.
type StripeGateway struct{}

// NewStripeGateway initializes the gateway with the given secret key.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

// Charge creates and confirms a PaymentIntent for the given amount.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountMinorUnits),
		Currency:      stripe.String(req.Currency),
		PaymentMethod: stripe.String(req.PaymentMethodToken),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(req.Description),
	}
	if req.GatewayCustomerKey != "" {
		params.Customer = stripe.String(req.GatewayCustomerKey)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return &ChargeResult{Succeeded: false, FailureMessage: stripeErr.Msg}, nil
		}
		return nil, err
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &ChargeResult{
			Succeeded:      false,
			PaymentID:      pi.ID,
			FailureMessage: string(pi.Status),
		}, nil
	}

	return &ChargeResult{Succeeded: true, PaymentID: pi.ID}, nil
}

// MockGateway is a PaymentGateway for testing.
type MockGateway struct {
	// Fail makes every charge come back declined.
	Fail bool

	// Err is returned verbatim from Charge when set.
	Err error

	// LastRequest records the most recent charge request.
	LastRequest ChargeRequest

	// ChargeCount counts Charge invocations.
	ChargeCount int
}

// NewMockGateway creates a gateway that approves every charge.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge records the request and answers according to the mock's knobs.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.ChargeCount++
	g.LastRequest = req

	if g.Err != nil {
		return nil, g.Err
	}
	if g.Fail {
		return &ChargeResult{Succeeded: false, FailureMessage: "card declined"}, nil
	}

	return &ChargeResult{Succeeded: true, PaymentID: "pay_mock_" + req.PaymentMethodToken}, nil
}
