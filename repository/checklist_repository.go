package repository

import (
	"context"
	"errors"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// ChecklistRepositoryImpl implements ChecklistRepository interface
type ChecklistRepositoryImpl struct {
	*BaseRepository[models.Checklist, models.ChecklistFilter]
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &ChecklistRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Checklist, models.ChecklistFilter](db),
	}
}

// ByRentalAndType finds a rental's checklist of the given type
func (r *ChecklistRepositoryImpl) ByRentalAndType(ctx context.Context, rentalID uint, checklistType models.ChecklistType) (*models.Checklist, error) {
	db := r.getDB(ctx)
	var checklist models.Checklist
	err := db.Where("rental_id = ? AND type = ?", rentalID, checklistType).Last(&checklist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checklist, nil
}

// ByFilter retrieves checklists based on filter criteria
func (r *ChecklistRepositoryImpl) ByFilter(ctx context.Context, filter models.ChecklistFilter, orderBy string, limit, offset int) ([]*models.Checklist, error) {
	db := r.getDB(ctx)
	var checklists []*models.Checklist

	query := db.Model(&models.Checklist{})
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

	err := query.Find(&checklists).Error
	if err != nil {
		return nil, err
	}
	return checklists, nil
}

// Count returns the number of checklists matching the filter
func (r *ChecklistRepositoryImpl) Count(ctx context.Context, filter models.ChecklistFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Checklist{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any checklist matching the filter exists
func (r *ChecklistRepositoryImpl) Exists(ctx context.Context, filter models.ChecklistFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *ChecklistRepositoryImpl) applyFilter(query *gorm.DB, filter models.ChecklistFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RentalID != nil {
		query = query.Where("rental_id = ?", *filter.RentalID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	return query
}
