package dto

// FeeRateDTO represents an admin fee rate row in API responses
type FeeRateDTO struct {
	ID             uint    `json:"id"`
	OrganizationID uint    `json:"organization_id"`
	Percent        float64 `json:"percent"`
	EffectiveFrom  string  `json:"effective_from"`
	EffectiveTo    *string `json:"effective_to,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// RentalFeeResponse represents the admin fee computed for a rental
type RentalFeeResponse struct {
	RentalID            uint     `json:"rental_id"`
	Percent             *float64 `json:"percent,omitempty"`
	CommissionableTotal int64    `json:"commissionable_total"`
	AmountCents         int64    `json:"amount_cents"`
}
