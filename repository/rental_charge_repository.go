package repository

import (
	"context"
	"fmt"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// RentalChargeRepositoryImpl implements RentalChargeRepository interface
type RentalChargeRepositoryImpl struct {
	*BaseRepository[models.RentalCharge, models.RentalChargeFilter]
}

// NewRentalChargeRepository creates a new rental charge repository
func NewRentalChargeRepository(db *gorm.DB) RentalChargeRepository {
	return &RentalChargeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RentalCharge, models.RentalChargeFilter](db),
	}
}

// ListByRental returns all charge line-items for a rental
func (r *RentalChargeRepositoryImpl) ListByRental(ctx context.Context, rentalID uint) ([]*models.RentalCharge, error) {
	db := r.getDB(ctx)
	var charges []*models.RentalCharge
	err := db.Where("rental_id = ?", rentalID).
		Order("id ASC").
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

// SumCommissionable sums the rental's commissionable charge amounts in minor
// units. Returns 0 for a rental with no commissionable charges.
func (r *RentalChargeRepositoryImpl) SumCommissionable(ctx context.Context, rentalID uint) (int64, error) {
	db := r.getDB(ctx)
	var sum *int64
	err := db.Model(&models.RentalCharge{}).
		Where("rental_id = ? AND commissionable = ?", rentalID, true).
		Select("SUM(amount_cents)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum commissionable charges for rental %d: %w", rentalID, err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// ByFilter retrieves charges based on filter criteria
func (r *RentalChargeRepositoryImpl) ByFilter(ctx context.Context, filter models.RentalChargeFilter, orderBy string, limit, offset int) ([]*models.RentalCharge, error) {
	db := r.getDB(ctx)
	var charges []*models.RentalCharge

	query := db.Model(&models.RentalCharge{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("id ASC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

// Count returns the number of charges matching the filter
func (r *RentalChargeRepositoryImpl) Count(ctx context.Context, filter models.RentalChargeFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.RentalCharge{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any charge matching the filter exists
func (r *RentalChargeRepositoryImpl) Exists(ctx context.Context, filter models.RentalChargeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *RentalChargeRepositoryImpl) applyFilter(query *gorm.DB, filter models.RentalChargeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RentalID != nil {
		query = query.Where("rental_id = ?", *filter.RentalID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Commissionable != nil {
		query = query.Where("commissionable = ?", *filter.Commissionable)
	}
	return query
}
