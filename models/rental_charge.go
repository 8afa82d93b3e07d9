package models

import "time"

// Charge kind constants
const (
	ChargeKindDaily   = "daily"
	ChargeKindOverage = "overage"
	ChargeKindDeposit = "deposit"
	ChargeKindDamage  = "damage"
	ChargeKindCleaning = "cleaning"
)

// RentalCharge is a single money line-item on a rental. Amounts are integer
// minor units. The commissionable flag marks the portion of the rental's
// charges eligible for admin commission.
type RentalCharge struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RentalID uint   `gorm:"not null;index:idx_rental_charges_rental_id" json:"rental_id"`
	Rental   Rental `gorm:"foreignKey:RentalID;references:ID" json:"-"`

	Kind        string `gorm:"size:20;not null" json:"kind"`
	Description *string `gorm:"size:255" json:"description,omitempty"`

	AmountCents    int64  `gorm:"not null" json:"amount_cents"`
	Currency       string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Commissionable *bool  `gorm:"default:true;index:idx_rental_charges_commissionable" json:"commissionable"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (RentalCharge) TableName() string {
	return "rental_charges"
}

// RentalChargeFilter represents filter criteria for charge queries
type RentalChargeFilter struct {
	ID             *uint   `json:"id,omitempty"`
	RentalID       *uint   `json:"rental_id,omitempty"`
	Kind           *string `json:"kind,omitempty"`
	Commissionable *bool   `json:"commissionable,omitempty"`
}
