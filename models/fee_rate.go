package models

import (
	"time"

	"gorm.io/gorm"
)

// FeeRate is a time-bounded admin commission percentage for an organization.
// At most one rate is expected to be active on any given date; overlapping
// ranges are tie-broken by the most recent EffectiveFrom.
type FeeRate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint         `gorm:"not null;index:idx_fee_rates_organization_id" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"-"`

	Percent float64 `gorm:"type:decimal(5,2);not null" json:"percent"`

	EffectiveFrom time.Time  `gorm:"type:date;not null;index:idx_fee_rates_effective_from" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date" json:"effective_to,omitempty"`

	Notes *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ActiveOn reports whether the rate covers the given date, bounds inclusive.
// Only the date portion is significant.
func (f *FeeRate) ActiveOn(date time.Time) bool {
	d := date.Format("2006-01-02")
	if d < f.EffectiveFrom.Format("2006-01-02") {
		return false
	}
	if f.EffectiveTo != nil && d > f.EffectiveTo.Format("2006-01-02") {
		return false
	}
	return true
}

// TableName returns the table name for the model
func (FeeRate) TableName() string {
	return "fee_rates"
}

// FeeRateFilter represents filter criteria for fee rate queries
type FeeRateFilter struct {
	ID             *uint      `json:"id,omitempty"`
	OrganizationID *uint      `json:"organization_id,omitempty"`
	ActiveOn       *time.Time `json:"active_on,omitempty"`
}
