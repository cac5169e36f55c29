package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

const currencyNOK = "nok"

// oere converts a whole-NOK amount to the minor unit the processor expects.
func oere(nok int64) int64 {
	return nok * 100
}

// StripeProvider implements Provider on the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider authenticated with the given secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

// CreateSession creates a hosted Stripe Checkout session.
func (p *StripeProvider) CreateSession(ctx context.Context, spec SessionSpec) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(spec.SuccessURL),
		CancelURL:  stripe.String(spec.CancelURL),
	}

	for _, item := range spec.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currencyNOK),
				UnitAmount: stripe.Int64(oere(item.UnitAmount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	if spec.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(spec.CustomerEmail)
	}
	if spec.CollectPhone {
		params.PhoneNumberCollection = &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		}
	}
	if spec.CollectShipping {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"NO"}),
		}
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.ID, sess.URL, nil
}

// RetrieveSession fetches a checkout session and its payment state.
func (p *StripeProvider) RetrieveSession(ctx context.Context, id string) (Summary, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	sess, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return Summary{}, fmt.Errorf("retrieve checkout session %s: %w", id, err)
	}

	summary := Summary{
		Reference: sess.ID,
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:  sess.Metadata,
	}
	if sess.CustomerDetails != nil {
		summary.Customer = Customer{
			Name:  sess.CustomerDetails.Name,
			Email: sess.CustomerDetails.Email,
			Phone: sess.CustomerDetails.Phone,
		}
		if sess.CustomerDetails.Address != nil {
			summary.Customer.Address = sess.CustomerDetails.Address.Line1
			summary.Customer.Zip = sess.CustomerDetails.Address.PostalCode
			summary.Customer.City = sess.CustomerDetails.Address.City
		}
	}
	return summary, nil
}

// CreateIntent creates a payment intent for the embedded payment flow.
func (p *StripeProvider) CreateIntent(ctx context.Context, spec IntentSpec) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(oere(spec.Amount)),
		Currency: stripe.String(currencyNOK),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}
	if spec.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(spec.ReceiptEmail)
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

// RetrieveIntent fetches a payment intent and its payment state. The latest
// charge is expanded to recover the billing details for the order record.
func (p *StripeProvider) RetrieveIntent(ctx context.Context, id string) (Summary, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("latest_charge")

	intent, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return Summary{}, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}

	summary := Summary{
		Reference: intent.ID,
		Paid:      intent.Status == stripe.PaymentIntentStatusSucceeded,
		Metadata:  intent.Metadata,
	}
	if intent.LatestCharge != nil && intent.LatestCharge.BillingDetails != nil {
		bd := intent.LatestCharge.BillingDetails
		summary.Customer = Customer{
			Name:  bd.Name,
			Email: bd.Email,
			Phone: bd.Phone,
		}
		if bd.Address != nil {
			summary.Customer.Address = bd.Address.Line1
			summary.Customer.Zip = bd.Address.PostalCode
			summary.Customer.City = bd.Address.City
		}
	}
	return summary, nil
}
