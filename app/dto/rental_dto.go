package dto

// RentalDTO represents a rental in API responses
type RentalDTO struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	OrganizationID uint    `json:"organization_id"`
	NumberID       *int    `json:"number_id,omitempty"`
	CustomerName   string  `json:"customer_name"`
	Status         string  `json:"status"`
	PickupAt       string  `json:"pickup_at"`
	DropoffAt      string  `json:"dropoff_at"`
	ExpectedKm     int64   `json:"expected_km"`
	ClosedAt       *string `json:"closed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CreateRentalRequest represents the request to create a rental with its
// progressive number
type CreateRentalRequest struct {
	OrganizationID uint   `json:"-"`
	CustomerName   string `json:"customer_name" validate:"required,max=255"`
	PricelistID    *uint  `json:"pricelist_id,omitempty"`
	VehicleID      *uint  `json:"vehicle_id,omitempty"`
	PickupAt       string `json:"pickup_at" validate:"required"`
	DropoffAt      string `json:"dropoff_at" validate:"required"`
	ExpectedKm     int64  `json:"expected_km" validate:"gte=0"`
}

// CreateRentalResponse represents the response to create a rental
type CreateRentalResponse struct {
	Message string    `json:"message"`
	Rental  RentalDTO `json:"rental"`
}

// CloseRentalRequest represents the request to close a rental
type CloseRentalRequest struct {
	RentalID           uint  `json:"-"`
	RequireSigned      *bool `json:"require_signed,omitempty"`
	RequireBasePayment *bool `json:"require_base_payment,omitempty"`
	GraceMinutes       *int  `json:"grace_minutes,omitempty" validate:"omitempty,gte=0"`
	CheckOnly          bool  `json:"check_only,omitempty"`
}

// CloseRentalResponse represents the close guard verdict
type CloseRentalResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// BackfillRequest represents the request to backfill rental numbers
type BackfillRequest struct {
	OrganizationID *uint `json:"organization_id,omitempty"`
	DryRun         bool  `json:"dry_run,omitempty"`
}

// BackfillOrganizationDTO represents the per-organization backfill outcome
type BackfillOrganizationDTO struct {
	OrganizationID uint `json:"organization_id"`
	Scanned        int  `json:"scanned"`
	Assigned       int  `json:"assigned"`
	SkippedLedger  int  `json:"skipped_ledger"`
	FirstNumber    int  `json:"first_number,omitempty"`
	LastNumber     int  `json:"last_number,omitempty"`
}

// BackfillResponse represents the response to a backfill run
type BackfillResponse struct {
	Message       string                    `json:"message"`
	DryRun        bool                      `json:"dry_run"`
	Organizations []BackfillOrganizationDTO `json:"organizations"`
}
