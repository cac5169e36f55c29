// Package payment abstracts the payment processor behind a provider
// interface so the checkout service never touches processor types directly.
//
// Amounts cross this boundary in whole NOK; the conversion to the
// processor's minor unit (øre) happens inside the implementation.
package payment

import "context"

// Customer is the buyer details collected by the hosted payment page.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Zip     string
	City    string
}

// LineItem is one priced line on a checkout session. UnitAmount is in
// whole NOK.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// SessionSpec describes a hosted checkout session to create.
type SessionSpec struct {
	LineItems       []LineItem
	Metadata        map[string]string
	SuccessURL      string
	CancelURL       string
	CustomerEmail   string
	CollectPhone    bool
	CollectShipping bool
}

// IntentSpec describes a direct payment intent to create. Amount is in
// whole NOK.
type IntentSpec struct {
	Amount       int64
	Metadata     map[string]string
	ReceiptEmail string
}

// Summary is the processor-agnostic view of a completed (or pending)
// payment, whether it came from a session or an intent.
type Summary struct {
	Reference string
	Paid      bool
	Metadata  map[string]string
	Customer  Customer
}

// Provider is the payment processor the checkout workflow runs against.
type Provider interface {
	// CreateSession creates a hosted checkout session and returns its ID
	// and the URL to redirect the customer to.
	CreateSession(ctx context.Context, spec SessionSpec) (id, url string, err error)

	// RetrieveSession fetches a session and its payment state.
	RetrieveSession(ctx context.Context, id string) (Summary, error)

	// CreateIntent creates a payment intent and returns its client secret.
	CreateIntent(ctx context.Context, spec IntentSpec) (clientSecret string, err error)

	// RetrieveIntent fetches a payment intent and its payment state.
	RetrieveIntent(ctx context.Context, id string) (Summary, error)
}
