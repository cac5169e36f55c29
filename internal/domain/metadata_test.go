package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutMetadata_Strings(t *testing.T) {
	meta := CheckoutMetadata{
		UserID:         "user-1",
		Quantity:       3,
		DeliveryMethod: DeliveryExpress,
		TotalPrice:     4570,
		ReservationID:  "res-1",
	}

	raw := meta.Strings()

	assert.Equal(t, "user-1", raw["userId"])
	assert.Equal(t, "3", raw["quantity"])
	assert.Equal(t, "express", raw["deliveryMethod"])
	assert.Equal(t, "4570", raw["totalPrice"])
	assert.Equal(t, "res-1", raw["reservationId"])
}

func TestCheckoutMetadata_StringsOmitsEmptyReservation(t *testing.T) {
	raw := CheckoutMetadata{Quantity: 1, DeliveryMethod: DeliveryPickup, TotalPrice: 1490}.Strings()

	_, present := raw["reservationId"]
	assert.False(t, present)
}

func TestParseCheckoutMetadata_RoundTrip(t *testing.T) {
	meta := CheckoutMetadata{
		UserID:         "user-1",
		Quantity:       5,
		DeliveryMethod: DeliveryStandard,
		TotalPrice:     8950,
		ReservationID:  "res-9",
	}

	parsed, err := ParseCheckoutMetadata(meta.Strings())

	require.NoError(t, err)
	assert.Equal(t, meta, parsed)
}

func TestParseCheckoutMetadata_Guest(t *testing.T) {
	parsed, err := ParseCheckoutMetadata(map[string]string{
		"quantity":       "2",
		"deliveryMethod": "pickup",
		"totalPrice":     "2980",
	})

	require.NoError(t, err)
	assert.Empty(t, parsed.UserID)
	assert.Empty(t, parsed.ReservationID)
	assert.Equal(t, 2, parsed.Quantity)
}

func TestParseCheckoutMetadata_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing quantity": {
			"deliveryMethod": "pickup",
			"totalPrice":     "1490",
		},
		"quantity not a number": {
			"quantity":       "two",
			"deliveryMethod": "pickup",
			"totalPrice":     "1490",
		},
		"quantity above limit": {
			"quantity":       "10",
			"deliveryMethod": "pickup",
			"totalPrice":     "14900",
		},
		"unknown delivery method": {
			"quantity":       "1",
			"deliveryMethod": "teleport",
			"totalPrice":     "1490",
		},
		"missing total": {
			"quantity":       "1",
			"deliveryMethod": "pickup",
		},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCheckoutMetadata(raw)
			assert.Error(t, err)
		})
	}
}
