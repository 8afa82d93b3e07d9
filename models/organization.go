// Package models contains domain entities and business models for the rental back-office
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationType distinguishes the platform owner from renter tenants
type OrganizationType string

const (
	OrganizationTypeAdmin  OrganizationType = "admin"
	OrganizationTypeRenter OrganizationType = "renter"
)

func (t OrganizationType) String() string {
	return string(t)
}

func (t OrganizationType) Valid() bool {
	switch t {
	case OrganizationTypeAdmin, OrganizationTypeRenter:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for OrganizationType
func (t *OrganizationType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = OrganizationType(v)
	case []byte:
		*t = OrganizationType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OrganizationType", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for OrganizationType
func (t OrganizationType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid OrganizationType: %s", t)
	}
	return string(t), nil
}

// Organization is a tenant: the platform admin or a renter business.
// Its row is the serialization point for contract-number allocation.
type Organization struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_organizations_uuid" json:"uuid"`

	Name string           `gorm:"size:120;not null" json:"name"`
	Type OrganizationType `gorm:"type:varchar(10);not null;default:'renter';index:idx_organizations_type" json:"type"`

	// Contact fields
	Email   *string `gorm:"size:255" json:"email,omitempty"`
	Phone   *string `gorm:"size:20" json:"phone,omitempty"`
	Address *string `gorm:"size:255" json:"address,omitempty"`
	VATCode *string `gorm:"size:20" json:"vat_code,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_organizations_is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_organizations_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relations
	Rentals       []Rental              `gorm:"foreignKey:OrganizationID" json:"-"`
	LedgerEntries []SequenceLedgerEntry `gorm:"foreignKey:OrganizationID" json:"-"`
	FeeRates      []FeeRate             `gorm:"foreignKey:OrganizationID" json:"-"`
}

// BeforeCreate ensures UUID is set
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	return nil
}

func (o *Organization) IsArchived() bool {
	return o.DeletedAt.Valid
}

// TableName returns the table name for the model
func (Organization) TableName() string {
	return "organizations"
}

// OrganizationFilter represents filter criteria for organization queries
type OrganizationFilter struct {
	ID       *uint             `json:"id,omitempty"`
	UUID     *uuid.UUID        `json:"uuid,omitempty"`
	Name     *string           `json:"name,omitempty"`
	Type     *OrganizationType `json:"type,omitempty"`
	IsActive *bool             `json:"is_active,omitempty"`
}
