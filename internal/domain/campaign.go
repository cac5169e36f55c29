package domain

import "time"

// Campaign is a promotional pricing record. Campaigns are read-only to the
// checkout workflow.
type Campaign struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	CampaignPrice int64     `json:"campaignPrice"`
	StandardPrice int64     `json:"standardPrice"`
	EndDate       time.Time `json:"endDate"`
	IsActive      bool      `json:"isActive"`
	Created       time.Time `json:"created"`
}

// PricePair is the resolved unit price together with the baseline standard
// price it discounts from.
type PricePair struct {
	Price         int64 `json:"price"`
	StandardPrice int64 `json:"standard_price"`
}

// DefaultPrices returns the hardcoded price pair used when no campaign is
// active or the campaign lookup failed.
func DefaultPrices() PricePair {
	return PricePair{Price: DefaultStandardPrice, StandardPrice: DefaultStandardPrice}
}

// ResolveActivePrice selects the price pair from the first campaign that is
// active and ends in the future. A campaign without an end date is never
// selected. Campaigns must be ordered newest first, so among several active
// campaigns the most recently created one wins.
func ResolveActivePrice(now time.Time, campaigns []Campaign) PricePair {
	for _, c := range campaigns {
		if !c.IsActive {
			continue
		}
		if c.EndDate.IsZero() || c.EndDate.Before(now) {
			continue
		}
		return PricePair{Price: c.CampaignPrice, StandardPrice: c.StandardPrice}
	}
	return DefaultPrices()
}
