package domain

import "time"

// DeliveryMethod is how an order is delivered to the customer.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
)

// ParseDeliveryMethod validates and converts a raw delivery method string.
func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	switch DeliveryMethod(s) {
	case DeliveryPickup, DeliveryStandard, DeliveryExpress:
		return DeliveryMethod(s), true
	default:
		return "", false
	}
}

// Label returns the customer-facing Norwegian label for the delivery method.
func (m DeliveryMethod) Label() string {
	switch m {
	case DeliveryPickup:
		return "Hent sjølv"
	case DeliveryExpress:
		return "Heimlevering (Ekspress)"
	default:
		return "Heimlevering (Standard)"
	}
}

// OrderStatusPaid is the status stored on orders created after a completed
// payment.
const OrderStatusPaid = "Betalt"

// ProductName is the single product this store sells.
const ProductName = "Blandingsved, 1000L storsekk"

// Order is a paid order record. Orders are created exactly once per
// successful payment confirmation and are immutable afterwards.
type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user,omitempty"`
	GuestEmail     string         `json:"guest_email,omitempty"`
	Quantity       int            `json:"quantity"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	TotalPrice     int64          `json:"total_price"`
	Status         string         `json:"status"`
	CustomerName   string         `json:"customer_name,omitempty"`
	CustomerPhone  string         `json:"customer_phone,omitempty"`
	CustomerAddr   string         `json:"customer_address,omitempty"`
	CustomerZip    string         `json:"customer_zip,omitempty"`
	CustomerCity   string         `json:"customer_city,omitempty"`
	Created        time.Time      `json:"created"`
}
