package domain

import "time"

// Inventory is the stock snapshot for the single inventory record.
// QuantityAvailable is the ground truth; IsInStock is informational.
type Inventory struct {
	ID                string `json:"id"`
	QuantityAvailable int    `json:"quantity_available"`
	IsInStock         bool   `json:"isInStock"`
}

// CanFulfil reports whether the snapshot covers the requested quantity.
func (i Inventory) CanFulfil(quantity int) bool {
	return i.IsInStock && i.QuantityAvailable >= quantity
}

// Reservation statuses. A reservation is held when stock has been set aside
// for a checkout session, consumed when the payment was confirmed, and
// released when the hold was cancelled or expired.
const (
	ReservationHeld     = "held"
	ReservationConsumed = "consumed"
	ReservationReleased = "released"
)

// Reservation is a stock hold created at checkout-session creation and
// resolved at confirmation, cancellation, or expiry.
type Reservation struct {
	ID        string    `json:"id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires"`
	Created   time.Time `json:"created"`
}

// Expired reports whether a held reservation has passed its expiry time.
func (r Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
