package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// FeeRateRepositoryImpl implements FeeRateRepository interface
type FeeRateRepositoryImpl struct {
	*BaseRepository[models.FeeRate, models.FeeRateFilter]
}

// NewFeeRateRepository creates a new fee rate repository
func NewFeeRateRepository(db *gorm.DB) FeeRateRepository {
	return &FeeRateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FeeRate, models.FeeRateFilter](db),
	}
}

// ActiveOnDate returns the fee rate effective for the organization on the
// given date: effective_from <= date, effective_to null or >= date, latest
// effective_from wins. Nil when no rate covers the date.
func (r *FeeRateRepositoryImpl) ActiveOnDate(ctx context.Context, organizationID uint, date time.Time) (*models.FeeRate, error) {
	db := r.getDB(ctx)
	day := date.Format("2006-01-02")

	var rate models.FeeRate
	err := db.Where("organization_id = ?", organizationID).
		Where("effective_from <= ?", day).
		Where("effective_to IS NULL OR effective_to >= ?", day).
		Order("effective_from DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// ListByOrganization returns the organization's fee rate history, most
// recent first
func (r *FeeRateRepositoryImpl) ListByOrganization(ctx context.Context, organizationID uint) ([]*models.FeeRate, error) {
	db := r.getDB(ctx)
	var rates []*models.FeeRate
	err := db.Where("organization_id = ?", organizationID).
		Order("effective_from DESC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// ByFilter retrieves fee rates based on filter criteria
func (r *FeeRateRepositoryImpl) ByFilter(ctx context.Context, filter models.FeeRateFilter, orderBy string, limit, offset int) ([]*models.FeeRate, error) {
	db := r.getDB(ctx)
	var rates []*models.FeeRate

	query := db.Model(&models.FeeRate{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("effective_from DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// Count returns the number of fee rates matching the filter
func (r *FeeRateRepositoryImpl) Count(ctx context.Context, filter models.FeeRateFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.FeeRate{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any fee rate matching the filter exists
func (r *FeeRateRepositoryImpl) Exists(ctx context.Context, filter models.FeeRateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *FeeRateRepositoryImpl) applyFilter(query *gorm.DB, filter models.FeeRateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.ActiveOn != nil {
		day := filter.ActiveOn.Format("2006-01-02")
		query = query.Where("effective_from <= ?", day).
			Where("effective_to IS NULL OR effective_to >= ?", day)
	}
	return query
}
