package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentalStatus represents the lifecycle state of a rental contract
type RentalStatus string

const (
	RentalStatusDraft     RentalStatus = "draft"
	RentalStatusCheckedIn RentalStatus = "checked_in"
	RentalStatusClosed    RentalStatus = "closed"
)

func (s RentalStatus) String() string {
	return string(s)
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusDraft, RentalStatusCheckedIn, RentalStatusClosed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RentalStatus
func (s *RentalStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = RentalStatus(v)
	case []byte:
		*s = RentalStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RentalStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for RentalStatus
func (s RentalStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RentalStatus: %s", s)
	}
	return string(s), nil
}

// Rental is a vehicle contract between a renter organization and a customer.
// NumberID is the per-organization sequential contract number; once set it is
// never changed. It is assigned by the allocator at creation time or by the
// backfill job for historical rows, never both.
type Rental struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_rentals_uuid" json:"uuid"`

	OrganizationID uint         `gorm:"not null;index:idx_rentals_organization_id;uniqueIndex:uk_rentals_org_number" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`

	NumberID *int `gorm:"uniqueIndex:uk_rentals_org_number" json:"number_id,omitempty"`

	PricelistID *uint      `gorm:"index:idx_rentals_pricelist_id" json:"pricelist_id,omitempty"`
	Pricelist   *Pricelist `gorm:"foreignKey:PricelistID;references:ID" json:"pricelist,omitempty"`

	VehicleID *uint    `gorm:"index:idx_rentals_vehicle_id" json:"vehicle_id,omitempty"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`

	CustomerName  string  `gorm:"size:120;not null" json:"customer_name"`
	CustomerEmail *string `gorm:"size:255" json:"customer_email,omitempty"`

	Status RentalStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_rentals_status" json:"status"`

	PickupAt   time.Time  `gorm:"not null" json:"pickup_at"`
	DropoffAt  time.Time  `gorm:"not null" json:"dropoff_at"`
	ExpectedKm int64      `gorm:"not null;default:0" json:"expected_km"`
	ClosedAt   *time.Time `gorm:"index:idx_rentals_closed_at" json:"closed_at,omitempty"`

	// Payment and signature bookkeeping consulted by the close guard
	BasePaymentRegistered    *bool `gorm:"default:false" json:"base_payment_registered"`
	OveragePaymentRequired   *bool `gorm:"default:false" json:"overage_payment_required"`
	OveragePaymentRegistered *bool `gorm:"default:false" json:"overage_payment_registered"`
	SignatureAttached        *bool `gorm:"default:false" json:"signature_attached"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_rentals_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relations
	Checklists []Checklist    `gorm:"foreignKey:RentalID" json:"checklists,omitempty"`
	Charges    []RentalCharge `gorm:"foreignKey:RentalID" json:"charges,omitempty"`
}

// BeforeCreate ensures UUID is set
func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RentalStatusDraft
	}
	return nil
}

func (r *Rental) HasNumber() bool {
	return r.NumberID != nil
}

func (r *Rental) IsClosed() bool {
	return r.Status == RentalStatusClosed
}

// TableName returns the table name for the model
func (Rental) TableName() string {
	return "rentals"
}

// RentalFilter represents filter criteria for rental queries
type RentalFilter struct {
	ID             *uint         `json:"id,omitempty"`
	UUID           *uuid.UUID    `json:"uuid,omitempty"`
	OrganizationID *uint         `json:"organization_id,omitempty"`
	Status         *RentalStatus `json:"status,omitempty"`
	HasNumber      *bool         `json:"has_number,omitempty"`
	PickupAfter    *time.Time    `json:"pickup_after,omitempty"`
	PickupBefore   *time.Time    `json:"pickup_before,omitempty"`
}
