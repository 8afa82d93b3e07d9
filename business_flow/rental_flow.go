package businessflow

import (
	"context"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
)

// RentalFlow defines the contract for rental lifecycle operations
type RentalFlow interface {
	CreateRental(ctx context.Context, req *dto.CreateRentalRequest, metadata *ClientMetadata) (*dto.CreateRentalResponse, error)
	GetRental(ctx context.Context, rentalID uint) (*dto.RentalDTO, error)
}

// RentalFlowImpl implements the rental business flow
type RentalFlowImpl struct {
	rentalRepo repository.RentalRepository
	numberFlow RentalNumberFlow
}

// NewRentalFlow creates a new rental flow instance
func NewRentalFlow(rentalRepo repository.RentalRepository, numberFlow RentalNumberFlow) RentalFlow {
	return &RentalFlowImpl{
		rentalRepo: rentalRepo,
		numberFlow: numberFlow,
	}
}

// CreateRental persists a new rental with its contract number. Allocation and
// insertion share one transaction, so a failed insert never burns a number.
func (f *RentalFlowImpl) CreateRental(ctx context.Context, req *dto.CreateRentalRequest, metadata *ClientMetadata) (*dto.CreateRentalResponse, error) {
	pickupAt, err := time.Parse(time.RFC3339, req.PickupAt)
	if err != nil {
		return nil, NewBusinessError("RENTAL_INVALID_PICKUP", "Pickup time must be RFC3339", err)
	}
	dropoffAt, err := time.Parse(time.RFC3339, req.DropoffAt)
	if err != nil {
		return nil, NewBusinessError("RENTAL_INVALID_DROPOFF", "Dropoff time must be RFC3339", err)
	}
	if !dropoffAt.After(pickupAt) {
		return nil, NewBusinessError("RENTAL_INVALID_RANGE", "Dropoff must be after pickup", ErrInvalidDateRange)
	}

	rental, err := f.numberFlow.AllocateAndCreate(ctx, req.OrganizationID, ActorFromContext(ctx), func(txCtx context.Context, numberID int) (*models.Rental, error) {
		rental := &models.Rental{
			OrganizationID: req.OrganizationID,
			NumberID:       &numberID,
			PricelistID:    req.PricelistID,
			VehicleID:      req.VehicleID,
			CustomerName:   req.CustomerName,
			Status:         models.RentalStatusDraft,
			PickupAt:       pickupAt.UTC(),
			DropoffAt:      dropoffAt.UTC(),
			ExpectedKm:     req.ExpectedKm,
		}
		if err := f.rentalRepo.Save(txCtx, rental); err != nil {
			return nil, err
		}
		return rental, nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateRentalResponse{
		Message: "Rental created successfully",
		Rental:  ToRentalDTO(*rental),
	}, nil
}

// GetRental returns a single rental by id
func (f *RentalFlowImpl) GetRental(ctx context.Context, rentalID uint) (*dto.RentalDTO, error) {
	rental, err := f.rentalRepo.ByID(ctx, rentalID)
	if err != nil {
		return nil, NewBusinessError("RENTAL_LOAD_FAILED", "Failed to load rental", err)
	}
	if rental == nil {
		return nil, NewBusinessErrorf("RENTAL_NOT_FOUND", "Rental %d not found", ErrRentalNotFound, rentalID)
	}
	d := ToRentalDTO(*rental)
	return &d, nil
}
