package dto

// QuoteRequest represents the request to quote a rental against a pricelist
type QuoteRequest struct {
	PricelistID uint   `json:"pricelist_id" validate:"required"`
	PickupAt    string `json:"pickup_at" validate:"required"`
	DropoffAt   string `json:"dropoff_at" validate:"required"`
	ExpectedKm  int64  `json:"expected_km" validate:"gte=0"`
}

// QuoteTierDTO represents the duration tier applied to a quote
type QuoteTierDTO struct {
	Name              string   `json:"name"`
	OverrideDailyRate *int64   `json:"override_daily_rate,omitempty"`
	DiscountPct       *float64 `json:"discount_pct,omitempty"`
}

// QuoteResponse represents the priced quote, all amounts in minor units
type QuoteResponse struct {
	Days          int           `json:"days"`
	DailyTotal    int64         `json:"daily_total"`
	OverageCharge int64         `json:"overage_charge"`
	Tier          *QuoteTierDTO `json:"tier,omitempty"`
	DepositAmount *int64        `json:"deposit_amount,omitempty"`
	Total         int64         `json:"total"`
	Currency      string        `json:"currency"`
}
