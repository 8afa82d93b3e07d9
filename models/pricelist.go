package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoundingMode controls how a quote's final total is rounded. Rounding is
// always upward, in the operator's favour.
type RoundingMode string

const (
	RoundingModeNone RoundingMode = "none"
	RoundingModeUp1  RoundingMode = "up_1"
	RoundingModeUp5  RoundingMode = "up_5"
)

func (m RoundingMode) String() string {
	return string(m)
}

func (m RoundingMode) Valid() bool {
	switch m {
	case RoundingModeNone, RoundingModeUp1, RoundingModeUp5:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RoundingMode
func (m *RoundingMode) Scan(value any) error {
	if value == nil {
		*m = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*m = RoundingMode(v)
	case []byte:
		*m = RoundingMode(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RoundingMode", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for RoundingMode
func (m RoundingMode) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid RoundingMode: %s", m)
	}
	return string(m), nil
}

// Pricelist is the rate card a rental is quoted against. All monetary
// amounts are integer minor units (cents).
type Pricelist struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_pricelists_uuid" json:"uuid"`

	OrganizationID *uint `gorm:"index:idx_pricelists_organization_id" json:"organization_id,omitempty"`

	Name     string `gorm:"size:120;not null" json:"name"`
	Currency string `gorm:"size:3;not null;default:'EUR'" json:"currency"`

	// Timezone is the IANA zone used for calendar classification of
	// billable days (weekend and season matching)
	Timezone string `gorm:"size:40;not null;default:'Europe/Rome'" json:"timezone"`

	BaseDailyRate          int64   `gorm:"not null" json:"base_daily_rate"`
	WeekendSurchargePct    float64 `gorm:"type:decimal(5,2);not null;default:0" json:"weekend_surcharge_pct"`
	IncludedKmPerDay       int64   `gorm:"not null;default:0" json:"included_km_per_day"`
	ExtraKmRate            int64   `gorm:"not null;default:0" json:"extra_km_rate"`
	DepositAmount          *int64  `json:"deposit_amount,omitempty"`
	Rounding               RoundingMode `gorm:"type:varchar(10);not null;default:'none'" json:"rounding"`

	IsActive *bool `gorm:"default:true;index:idx_pricelists_is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Position-ordered children; list order is match priority
	Seasons []Season `gorm:"foreignKey:PricelistID" json:"seasons,omitempty"`
	Tiers   []Tier   `gorm:"foreignKey:PricelistID" json:"tiers,omitempty"`
}

// BeforeCreate ensures UUID is set
func (p *Pricelist) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Rounding == "" {
		p.Rounding = RoundingModeNone
	}
	return nil
}

// TableName returns the table name for the model
func (Pricelist) TableName() string {
	return "pricelists"
}

// Season is a date-range pricing override. The first season containing a
// billable day in position order wins.
type Season struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PricelistID uint   `gorm:"not null;index:idx_seasons_pricelist_id" json:"pricelist_id"`
	Name        string `gorm:"size:60;not null" json:"name"`

	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`

	SurchargePct       *float64 `gorm:"type:decimal(5,2)" json:"surcharge_pct,omitempty"`
	WeekendOverridePct *float64 `gorm:"type:decimal(5,2)" json:"weekend_override_pct,omitempty"`

	Position  int       `gorm:"not null;default:0;index:idx_seasons_position" json:"position"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// Contains reports whether the given calendar date falls inside the season,
// bounds inclusive. Only the date portion of the arguments is significant.
func (s *Season) Contains(date time.Time) bool {
	d := date.Format("2006-01-02")
	return d >= s.StartDate.Format("2006-01-02") && d <= s.EndDate.Format("2006-01-02")
}

// TableName returns the table name for the model
func (Season) TableName() string {
	return "pricelist_seasons"
}

// Tier is a day-count pricing rule: either a flat override daily rate or a
// percentage discount. First match in position order wins.
type Tier struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PricelistID uint   `gorm:"not null;index:idx_tiers_pricelist_id" json:"pricelist_id"`
	Name        string `gorm:"size:60;not null" json:"name"`

	MinDays int  `gorm:"not null;default:1" json:"min_days"`
	MaxDays *int `json:"max_days,omitempty"`

	OverrideDailyRate *int64   `json:"override_daily_rate,omitempty"`
	DiscountPct       *float64 `gorm:"type:decimal(5,2)" json:"discount_pct,omitempty"`

	Position  int       `gorm:"not null;default:0;index:idx_tiers_position" json:"position"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// Matches reports whether the tier applies to a rental of the given length
func (t *Tier) Matches(days int) bool {
	if days < t.MinDays {
		return false
	}
	if t.MaxDays != nil && days > *t.MaxDays {
		return false
	}
	return true
}

// TableName returns the table name for the model
func (Tier) TableName() string {
	return "pricelist_tiers"
}

// PricelistFilter represents filter criteria for pricelist queries
type PricelistFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	OrganizationID *uint      `json:"organization_id,omitempty"`
	Name           *string    `json:"name,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}
