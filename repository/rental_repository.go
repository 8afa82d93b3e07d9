package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// RentalRepositoryImpl implements RentalRepository interface
type RentalRepositoryImpl struct {
	*BaseRepository[models.Rental, models.RentalFilter]
}

// NewRentalRepository creates a new rental repository
func NewRentalRepository(db *gorm.DB) RentalRepository {
	return &RentalRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Rental, models.RentalFilter](db),
	}
}

// ByUUID finds a rental by UUID
func (r *RentalRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Rental, error) {
	db := r.getDB(ctx)
	var rental models.Rental
	err := db.Where("uuid = ?", uuid).Last(&rental).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rental, nil
}

// MaxNumberID returns the highest assigned contract number among the
// organization's rentals, 0 when none carry a number.
func (r *RentalRepositoryImpl) MaxNumberID(ctx context.Context, organizationID uint) (int, error) {
	db := r.getDB(ctx)
	var max *int
	err := db.Model(&models.Rental{}).
		Where("organization_id = ?", organizationID).
		Select("MAX(number_id)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max number_id for organization %d: %w", organizationID, err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ListMissingNumber returns rentals without a contract number in historical
// precedence order: created_at ASC then id ASC. The ordering must be stable
// across reruns so backfill assignments are deterministic.
func (r *RentalRepositoryImpl) ListMissingNumber(ctx context.Context, organizationID uint) ([]*models.Rental, error) {
	db := r.getDB(ctx)
	var rentals []*models.Rental
	err := db.Where("organization_id = ? AND number_id IS NULL", organizationID).
		Order("created_at ASC, id ASC").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

// AssignNumber sets the contract number on a rental that has none yet. The
// WHERE guard on number_id IS NULL keeps an already-numbered rental immutable.
func (r *RentalRepositoryImpl) AssignNumber(ctx context.Context, rentalID uint, numberID int) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Model(&models.Rental{}).
		Where("id = ? AND number_id IS NULL", rentalID).
		Update("number_id", numberID)
	if res.Error != nil {
		err = fmt.Errorf("failed to assign number %d to rental %d: %w", numberID, rentalID, res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = fmt.Errorf("rental %d not found or already numbered", rentalID)
		return err
	}
	return nil
}

// Close marks the rental closed and stamps closed_at
func (r *RentalRepositoryImpl) Close(ctx context.Context, rentalID uint, closedAt time.Time) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Rental{}).
		Where("id = ?", rentalID).
		Updates(map[string]any{
			"status":    models.RentalStatusClosed,
			"closed_at": closedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to close rental %d: %w", rentalID, err)
	}
	return nil
}

// ByFilter retrieves rentals based on filter criteria
func (r *RentalRepositoryImpl) ByFilter(ctx context.Context, filter models.RentalFilter, orderBy string, limit, offset int) ([]*models.Rental, error) {
	db := r.getDB(ctx)
	var rentals []*models.Rental

	query := db.Model(&models.Rental{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at ASC, id ASC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

// Count returns the number of rentals matching the filter
func (r *RentalRepositoryImpl) Count(ctx context.Context, filter models.RentalFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Rental{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any rental matching the filter exists
func (r *RentalRepositoryImpl) Exists(ctx context.Context, filter models.RentalFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *RentalRepositoryImpl) applyFilter(query *gorm.DB, filter models.RentalFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.HasNumber != nil {
		if *filter.HasNumber {
			query = query.Where("number_id IS NOT NULL")
		} else {
			query = query.Where("number_id IS NULL")
		}
	}
	if filter.PickupAfter != nil {
		query = query.Where("pickup_at >= ?", *filter.PickupAfter)
	}
	if filter.PickupBefore != nil {
		query = query.Where("pickup_at <= ?", *filter.PickupBefore)
	}
	return query
}
