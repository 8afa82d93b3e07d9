package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle is a fleet unit owned by the platform admin and assigned to renter
// organizations through VehicleAssignment rows.
type Vehicle struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_vehicles_uuid" json:"uuid"`

	Plate string `gorm:"size:12;not null;uniqueIndex:uk_vehicles_plate" json:"plate"`
	Make  string `gorm:"size:60;not null" json:"make"`
	Model string `gorm:"size:60;not null" json:"model"`

	OdometerKm int64 `gorm:"not null;default:0" json:"odometer_km"`
	IsActive   *bool `gorm:"default:true;index:idx_vehicles_is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Assignments []VehicleAssignment `gorm:"foreignKey:VehicleID" json:"-"`
}

// BeforeCreate ensures UUID is set
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the model
func (Vehicle) TableName() string {
	return "vehicles"
}

// VehicleFilter represents filter criteria for vehicle queries
type VehicleFilter struct {
	ID       *uint   `json:"id,omitempty"`
	Plate    *string `json:"plate,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Assignment status constants
const (
	AssignmentStatusActive = "active"
	AssignmentStatusClosed = "closed"
)

// VehicleAssignment grants a renter organization use of a vehicle for a date
// range. Expired active assignments are closed by the scheduler.
type VehicleAssignment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	VehicleID uint    `gorm:"not null;index:idx_vehicle_assignments_vehicle_id" json:"vehicle_id"`
	Vehicle   Vehicle `gorm:"foreignKey:VehicleID;references:ID" json:"-"`

	OrganizationID uint         `gorm:"not null;index:idx_vehicle_assignments_org_id" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"-"`

	StartsAt time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time  `gorm:"not null;index:idx_vehicle_assignments_ends_at" json:"ends_at"`
	Status   string     `gorm:"size:10;not null;default:'active';index:idx_vehicle_assignments_status" json:"status"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// IsExpired reports whether the assignment window has passed at the given time
func (a *VehicleAssignment) IsExpired(now time.Time) bool {
	return now.After(a.EndsAt)
}

// TableName returns the table name for the model
func (VehicleAssignment) TableName() string {
	return "vehicle_assignments"
}

// VehicleAssignmentFilter represents filter criteria for assignment queries
type VehicleAssignmentFilter struct {
	ID             *uint   `json:"id,omitempty"`
	VehicleID      *uint   `json:"vehicle_id,omitempty"`
	OrganizationID *uint   `json:"organization_id,omitempty"`
	Status         *string `json:"status,omitempty"`
}
