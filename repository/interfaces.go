// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// OrganizationRepository defines operations for organizations
type OrganizationRepository interface {
	Repository[models.Organization, models.OrganizationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Organization, error)
	// LockByID acquires a FOR UPDATE row lock on the organization inside the
	// transaction carried by ctx. Returns nil when the row does not exist.
	LockByID(ctx context.Context, id uint) (*models.Organization, error)
	ListActiveRenters(ctx context.Context) ([]*models.Organization, error)
	Archive(ctx context.Context, id uint) error
}

// RentalRepository defines operations for rentals
type RentalRepository interface {
	Repository[models.Rental, models.RentalFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Rental, error)
	// MaxNumberID returns the highest number_id assigned among the
	// organization's rentals, 0 when none carry a number yet.
	MaxNumberID(ctx context.Context, organizationID uint) (int, error)
	// ListMissingNumber returns the organization's rentals without a
	// number_id ordered by created_at ASC, id ASC.
	ListMissingNumber(ctx context.Context, organizationID uint) ([]*models.Rental, error)
	AssignNumber(ctx context.Context, rentalID uint, numberID int) error
	Close(ctx context.Context, rentalID uint, closedAt time.Time) error
}

// SequenceLedgerRepository defines operations for the append-only allocation
// ledger. There are deliberately no update or delete methods.
type SequenceLedgerRepository interface {
	Save(ctx context.Context, entry *models.SequenceLedgerEntry) error
	// MaxNumberForOrganization returns the highest number_id ever recorded
	// for the organization, 0 when the ledger has no rows for it.
	MaxNumberForOrganization(ctx context.Context, organizationID uint) (int, error)
	ExistsForRental(ctx context.Context, organizationID, rentalID uint) (bool, error)
	ListByOrganization(ctx context.Context, organizationID uint, limit, offset int) ([]*models.SequenceLedgerEntry, error)
	CountByOrganization(ctx context.Context, organizationID uint) (int64, error)
}

// PricelistRepository defines operations for pricelists
type PricelistRepository interface {
	Repository[models.Pricelist, models.PricelistFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Pricelist, error)
	// ByIDWithRules loads the pricelist with its seasons and tiers in
	// position order.
	ByIDWithRules(ctx context.Context, id uint) (*models.Pricelist, error)
}

// FeeRateRepository defines operations for admin commission rates
type FeeRateRepository interface {
	Repository[models.FeeRate, models.FeeRateFilter]
	// ActiveOnDate returns the rate effective for the organization on the
	// given date, tie-broken by latest effective_from. Nil when none match.
	ActiveOnDate(ctx context.Context, organizationID uint, date time.Time) (*models.FeeRate, error)
	ListByOrganization(ctx context.Context, organizationID uint) ([]*models.FeeRate, error)
}

// ChecklistRepository defines operations for rental checklists
type ChecklistRepository interface {
	Repository[models.Checklist, models.ChecklistFilter]
	ByRentalAndType(ctx context.Context, rentalID uint, checklistType models.ChecklistType) (*models.Checklist, error)
}

// RentalChargeRepository defines operations for rental charge line-items
type RentalChargeRepository interface {
	Repository[models.RentalCharge, models.RentalChargeFilter]
	ListByRental(ctx context.Context, rentalID uint) ([]*models.RentalCharge, error)
	// SumCommissionable sums the amounts of the rental's commissionable
	// charges in minor units.
	SumCommissionable(ctx context.Context, rentalID uint) (int64, error)
}

// VehicleAssignmentRepository defines operations for fleet assignments
type VehicleAssignmentRepository interface {
	Repository[models.VehicleAssignment, models.VehicleAssignmentFilter]
	ListExpiredActive(ctx context.Context, asOf time.Time) ([]*models.VehicleAssignment, error)
	CloseAssignment(ctx context.Context, assignmentID uint, closedAt time.Time) error
}
