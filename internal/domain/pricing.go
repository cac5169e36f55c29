package domain

// Pricing constants, in whole NOK.
const (
	// MaxQuantity is the largest number of sacks a single order may contain.
	MaxQuantity = 9

	// DefaultStandardPrice is the unit price used when no campaign is active.
	DefaultStandardPrice int64 = 1490

	// StandardDeliveryPerSack is the standard home-delivery price per sack.
	StandardDeliveryPerSack int64 = 300

	// ExpressDeliveryPerGroup is the express-delivery price per started group
	// of ExpressGroupSize sacks.
	ExpressDeliveryPerGroup int64 = 1000

	// ExpressGroupSize is how many sacks share one express delivery unit.
	ExpressGroupSize = 3
)

// Quote is a cost breakdown for a quantity, delivery method, and unit price.
type Quote struct {
	WoodCost     int64 `json:"wood_cost"`
	ShippingCost int64 `json:"shipping_cost"`
	Total        int64 `json:"total"`
}

// ValidQuantity reports whether the quantity is within the order limits.
func ValidQuantity(quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity
}

// ShippingUnits returns the per-unit shipping price and the number of
// shipping units for the given quantity and delivery method. Pickup has no
// shipping line.
func ShippingUnits(quantity int, method DeliveryMethod) (unitAmount int64, units int64) {
	switch method {
	case DeliveryExpress:
		groups := (quantity + ExpressGroupSize - 1) / ExpressGroupSize
		return ExpressDeliveryPerGroup, int64(groups)
	case DeliveryStandard:
		return StandardDeliveryPerSack, int64(quantity)
	default:
		return 0, 0
	}
}

// ShippingCost computes the shipping cost for the given quantity and method.
func ShippingCost(quantity int, method DeliveryMethod) int64 {
	unitAmount, units := ShippingUnits(quantity, method)
	return unitAmount * units
}

// CalculateQuote computes the full cost breakdown. The unit price must be the
// server-resolved price; client-submitted totals are never an input here.
func CalculateQuote(quantity int, method DeliveryMethod, unitPrice int64) Quote {
	woodCost := int64(quantity) * unitPrice
	shippingCost := ShippingCost(quantity, method)
	return Quote{
		WoodCost:     woodCost,
		ShippingCost: shippingCost,
		Total:        woodCost + shippingCost,
	}
}
