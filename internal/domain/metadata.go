package domain

import (
	"fmt"
	"strconv"
)

// Metadata keys attached to payment sessions and intents.
const (
	metaUserID         = "userId"
	metaQuantity       = "quantity"
	metaDeliveryMethod = "deliveryMethod"
	metaTotalPrice     = "totalPrice"
	metaReservationID  = "reservationId"
)

// CheckoutMetadata carries order intent across the payment redirect boundary.
// It is round-tripped through the payment processor as string key-value pairs
// and is the only channel between session creation and confirmation.
type CheckoutMetadata struct {
	UserID         string
	Quantity       int
	DeliveryMethod DeliveryMethod
	TotalPrice     int64
	ReservationID  string
}

// Strings encodes the metadata for attachment to a payment session.
func (m CheckoutMetadata) Strings() map[string]string {
	out := map[string]string{
		metaUserID:         m.UserID,
		metaQuantity:       strconv.Itoa(m.Quantity),
		metaDeliveryMethod: string(m.DeliveryMethod),
		metaTotalPrice:     strconv.FormatInt(m.TotalPrice, 10),
	}
	if m.ReservationID != "" {
		out[metaReservationID] = m.ReservationID
	}
	return out
}

// ParseCheckoutMetadata re-parses the stringly-typed payment metadata back
// into typed fields, validating the quantity and delivery method.
func ParseCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	quantity, err := strconv.Atoi(raw[metaQuantity])
	if err != nil {
		return CheckoutMetadata{}, fmt.Errorf("parse metadata quantity %q: %w", raw[metaQuantity], err)
	}
	if !ValidQuantity(quantity) {
		return CheckoutMetadata{}, fmt.Errorf("metadata quantity %d out of range [1,%d]", quantity, MaxQuantity)
	}

	method, ok := ParseDeliveryMethod(raw[metaDeliveryMethod])
	if !ok {
		return CheckoutMetadata{}, fmt.Errorf("invalid metadata delivery method %q", raw[metaDeliveryMethod])
	}

	total, err := strconv.ParseInt(raw[metaTotalPrice], 10, 64)
	if err != nil {
		return CheckoutMetadata{}, fmt.Errorf("parse metadata total price %q: %w", raw[metaTotalPrice], err)
	}

	return CheckoutMetadata{
		UserID:         raw[metaUserID],
		Quantity:       quantity,
		DeliveryMethod: method,
		TotalPrice:     total,
		ReservationID:  raw[metaReservationID],
	}, nil
}
