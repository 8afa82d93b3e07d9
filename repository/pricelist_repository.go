package repository

import (
	"context"
	"errors"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// PricelistRepositoryImpl implements PricelistRepository interface
type PricelistRepositoryImpl struct {
	*BaseRepository[models.Pricelist, models.PricelistFilter]
}

// NewPricelistRepository creates a new pricelist repository
func NewPricelistRepository(db *gorm.DB) PricelistRepository {
	return &PricelistRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Pricelist, models.PricelistFilter](db),
	}
}

// ByUUID finds a pricelist by UUID
func (r *PricelistRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Pricelist, error) {
	db := r.getDB(ctx)
	var pricelist models.Pricelist
	err := db.Where("uuid = ?", uuid).Last(&pricelist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pricelist, nil
}

// ByIDWithRules loads a pricelist with seasons and tiers preloaded in
// position order, the order the pricing engine evaluates them in.
func (r *PricelistRepositoryImpl) ByIDWithRules(ctx context.Context, id uint) (*models.Pricelist, error) {
	db := r.getDB(ctx)
	var pricelist models.Pricelist
	err := db.
		Preload("Seasons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&pricelist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pricelist, nil
}

// ByFilter retrieves pricelists based on filter criteria
func (r *PricelistRepositoryImpl) ByFilter(ctx context.Context, filter models.PricelistFilter, orderBy string, limit, offset int) ([]*models.Pricelist, error) {
	db := r.getDB(ctx)
	var pricelists []*models.Pricelist

	query := db.Model(&models.Pricelist{})
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

	err := query.Find(&pricelists).Error
	if err != nil {
		return nil, err
	}
	return pricelists, nil
}

// Count returns the number of pricelists matching the filter
func (r *PricelistRepositoryImpl) Count(ctx context.Context, filter models.PricelistFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Pricelist{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any pricelist matching the filter exists
func (r *PricelistRepositoryImpl) Exists(ctx context.Context, filter models.PricelistFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *PricelistRepositoryImpl) applyFilter(query *gorm.DB, filter models.PricelistFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
