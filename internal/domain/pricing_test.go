package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidQuantity(t *testing.T) {
	assert.False(t, ValidQuantity(0))
	assert.False(t, ValidQuantity(-1))
	assert.True(t, ValidQuantity(1))
	assert.True(t, ValidQuantity(9))
	assert.False(t, ValidQuantity(10))
}

func TestShippingCost_Pickup(t *testing.T) {
	for q := 1; q <= MaxQuantity; q++ {
		assert.Equal(t, int64(0), ShippingCost(q, DeliveryPickup))
	}
}

func TestShippingCost_Standard(t *testing.T) {
	assert.Equal(t, int64(300), ShippingCost(1, DeliveryStandard))
	assert.Equal(t, int64(1500), ShippingCost(5, DeliveryStandard))
	assert.Equal(t, int64(2700), ShippingCost(9, DeliveryStandard))
}

func TestShippingCost_ExpressGroups(t *testing.T) {
	// One delivery unit per started group of three sacks.
	assert.Equal(t, int64(1000), ShippingCost(1, DeliveryExpress))
	assert.Equal(t, int64(1000), ShippingCost(3, DeliveryExpress))
	assert.Equal(t, int64(2000), ShippingCost(4, DeliveryExpress))
	assert.Equal(t, int64(2000), ShippingCost(6, DeliveryExpress))
	assert.Equal(t, int64(3000), ShippingCost(7, DeliveryExpress))
	assert.Equal(t, int64(3000), ShippingCost(9, DeliveryExpress))
}

func TestCalculateQuote_ExpressExample(t *testing.T) {
	quote := CalculateQuote(3, DeliveryExpress, 1190)

	assert.Equal(t, int64(3570), quote.WoodCost)
	assert.Equal(t, int64(1000), quote.ShippingCost)
	assert.Equal(t, int64(4570), quote.Total)
}

func TestCalculateQuote_StandardExample(t *testing.T) {
	quote := CalculateQuote(5, DeliveryStandard, 1490)

	assert.Equal(t, int64(7450), quote.WoodCost)
	assert.Equal(t, int64(1500), quote.ShippingCost)
	assert.Equal(t, int64(8950), quote.Total)
}

func TestCalculateQuote_PickupHasNoShipping(t *testing.T) {
	quote := CalculateQuote(2, DeliveryPickup, 1490)

	assert.Equal(t, int64(2980), quote.WoodCost)
	assert.Equal(t, int64(0), quote.ShippingCost)
	assert.Equal(t, quote.WoodCost, quote.Total)
}

func TestParseDeliveryMethod(t *testing.T) {
	for _, valid := range []string{"pickup", "standard", "express"} {
		method, ok := ParseDeliveryMethod(valid)
		assert.True(t, ok)
		assert.Equal(t, valid, string(method))
	}

	_, ok := ParseDeliveryMethod("drone")
	assert.False(t, ok)
	_, ok = ParseDeliveryMethod("")
	assert.False(t, ok)
}

func TestDeliveryMethodLabel(t *testing.T) {
	assert.Equal(t, "Hent sjølv", DeliveryPickup.Label())
	assert.Equal(t, "Heimlevering (Standard)", DeliveryStandard.Label())
	assert.Equal(t, "Heimlevering (Ekspress)", DeliveryExpress.Label())
}
