package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ChecklistType distinguishes pickup from return checklists
type ChecklistType string

const (
	ChecklistTypePickup ChecklistType = "pickup"
	ChecklistTypeReturn ChecklistType = "return"
)

func (t ChecklistType) String() string {
	return string(t)
}

func (t ChecklistType) Valid() bool {
	switch t {
	case ChecklistTypePickup, ChecklistTypeReturn:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ChecklistType
func (t *ChecklistType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = ChecklistType(v)
	case []byte:
		*t = ChecklistType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ChecklistType", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for ChecklistType
func (t ChecklistType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ChecklistType: %s", t)
	}
	return string(t), nil
}

// Checklist records the vehicle condition walkthrough at pickup or return.
// The close guard requires a return checklist to exist and, when signatures
// are enforced, a signed pickup checklist.
type Checklist struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RentalID uint   `gorm:"not null;index:idx_checklists_rental_id;uniqueIndex:uk_checklists_rental_type" json:"rental_id"`
	Rental   Rental `gorm:"foreignKey:RentalID;references:ID" json:"-"`

	Type ChecklistType `gorm:"type:varchar(10);not null;uniqueIndex:uk_checklists_rental_type" json:"type"`

	OdometerKm        *int64 `json:"odometer_km,omitempty"`
	FuelLevelPct      *int   `json:"fuel_level_pct,omitempty"`
	SignatureAttached *bool  `gorm:"default:false" json:"signature_attached"`
	Notes             *string `gorm:"type:text" json:"notes,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (Checklist) TableName() string {
	return "rental_checklists"
}

// ChecklistFilter represents filter criteria for checklist queries
type ChecklistFilter struct {
	ID       *uint          `json:"id,omitempty"`
	RentalID *uint          `json:"rental_id,omitempty"`
	Type     *ChecklistType `json:"type,omitempty"`
}
