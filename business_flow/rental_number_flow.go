package businessflow

import (
	"context"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"gorm.io/gorm"
)

// CreateRentalFunc is the caller-supplied creation routine. It receives the
// allocated contract number and must create and persist a rental carrying
// that number for the requesting organization, using the transaction bound
// to ctx.
type CreateRentalFunc func(ctx context.Context, numberID int) (*models.Rental, error)

// RentalNumberFlow allocates per-organization sequential contract numbers.
// Every allocation is recorded in the append-only sequence ledger inside the
// same transaction that persists the rental.
type RentalNumberFlow interface {
	AllocateAndCreate(ctx context.Context, organizationID uint, createdBy *uint, create CreateRentalFunc) (*models.Rental, error)
}

// RentalNumberFlowImpl implements the contract-number allocation flow
type RentalNumberFlowImpl struct {
	orgRepo    repository.OrganizationRepository
	ledgerRepo repository.SequenceLedgerRepository
	db         *gorm.DB
}

// NewRentalNumberFlow creates a new rental number flow instance
func NewRentalNumberFlow(
	orgRepo repository.OrganizationRepository,
	ledgerRepo repository.SequenceLedgerRepository,
	db *gorm.DB,
) RentalNumberFlow {
	return &RentalNumberFlowImpl{
		orgRepo:    orgRepo,
		ledgerRepo: ledgerRepo,
		db:         db,
	}
}

// AllocateAndCreate computes the next contract number for the organization,
// invokes the creation routine with it, and appends the allocation to the
// ledger, all inside one transaction serialized on the organization row.
// Transient contention (deadlock, lock timeout, serialization failure) is
// retried in a fresh transaction up to utils.MaxAllocationAttempts times; a
// failed attempt burns no number because nothing it did commits.
func (f *RentalNumberFlowImpl) AllocateAndCreate(ctx context.Context, organizationID uint, createdBy *uint, create CreateRentalFunc) (*models.Rental, error) {
	if create == nil {
		return nil, NewBusinessError("RENTAL_CREATE_CALLBACK_NIL", "Rental creation callback is required", ErrCreateCallbackNil)
	}

	var rental *models.Rental
	err := repository.WithRetryableTransaction(ctx, f.db, utils.MaxAllocationAttempts, func(txCtx context.Context) error {
		// The organization row lock is the sole serialization point:
		// concurrent allocations for the same organization queue here,
		// different organizations proceed independently.
		org, err := f.orgRepo.LockByID(txCtx, organizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return NewBusinessErrorf("ORGANIZATION_NOT_FOUND", "Organization %d not found", ErrOrganizationNotFound, organizationID)
		}

		max, err := f.ledgerRepo.MaxNumberForOrganization(txCtx, organizationID)
		if err != nil {
			return err
		}
		candidate := max + 1
		if candidate < 1 {
			// guard against corrupted negative state
			candidate = 1
		}

		rental, err = create(txCtx, candidate)
		if err != nil {
			return err
		}
		if err := validateCreatedRental(rental, organizationID, candidate); err != nil {
			return err
		}

		entry := &models.SequenceLedgerEntry{
			OrganizationID: organizationID,
			RentalID:       rental.ID,
			NumberID:       candidate,
			CreatedBy:      createdBy,
			CreatedAt:      utils.UTCNow(),
		}
		return f.ledgerRepo.Save(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// validateCreatedRental enforces the creation-callback contract: a persisted
// rental bound to the requesting organization and the allocated number.
func validateCreatedRental(rental *models.Rental, organizationID uint, numberID int) error {
	if rental == nil || rental.ID == 0 {
		return NewBusinessError("RENTAL_NOT_PERSISTED", "Creation callback must return a persisted rental", ErrRentalNotPersisted)
	}
	if rental.OrganizationID != organizationID {
		return NewBusinessErrorf("RENTAL_WRONG_ORGANIZATION", "Created rental belongs to organization %d, expected %d", ErrRentalWrongOrganization, rental.OrganizationID, organizationID)
	}
	if rental.NumberID == nil || *rental.NumberID != numberID {
		return NewBusinessErrorf("RENTAL_WRONG_NUMBER", "Created rental does not carry allocated number %d", ErrRentalWrongNumber, numberID)
	}
	return nil
}
