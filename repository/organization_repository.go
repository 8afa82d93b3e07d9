package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrganizationRepositoryImpl implements OrganizationRepository interface
type OrganizationRepositoryImpl struct {
	*BaseRepository[models.Organization, models.OrganizationFilter]
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Organization, models.OrganizationFilter](db),
	}
}

// ByUUID finds an organization by UUID
func (r *OrganizationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Organization, error) {
	db := r.getDB(ctx)
	var org models.Organization
	err := db.Where("uuid = ?", uuid).Last(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// LockByID acquires a FOR UPDATE lock on the organization row. The lock is
// the sole serialization point for number allocation: concurrent allocations
// for the same organization queue here, allocations for different
// organizations never block each other. Callers must run inside a
// transaction (WithTransaction) or the lock is released immediately.
func (r *OrganizationRepositoryImpl) LockByID(ctx context.Context, id uint) (*models.Organization, error) {
	db := r.getDB(ctx)
	var org models.Organization
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock organization %d: %w", id, err)
	}
	return &org, nil
}

// ListActiveRenters returns all active renter organizations ordered by ID
func (r *OrganizationRepositoryImpl) ListActiveRenters(ctx context.Context) ([]*models.Organization, error) {
	db := r.getDB(ctx)
	var orgs []*models.Organization
	err := db.Where("type = ? AND is_active = ?", models.OrganizationTypeRenter, true).
		Order("id ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Archive soft-deletes the organization
func (r *OrganizationRepositoryImpl) Archive(ctx context.Context, id uint) error {
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

	err = db.Model(&models.Organization{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  false,
			"deleted_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to archive organization %d: %w", id, err)
	}
	return nil
}

// ByFilter retrieves organizations based on filter criteria
func (r *OrganizationRepositoryImpl) ByFilter(ctx context.Context, filter models.OrganizationFilter, orderBy string, limit, offset int) ([]*models.Organization, error) {
	db := r.getDB(ctx)
	var orgs []*models.Organization

	query := db.Model(&models.Organization{})
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

	err := query.Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the number of organizations matching the filter
func (r *OrganizationRepositoryImpl) Count(ctx context.Context, filter models.OrganizationFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Organization{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any organization matching the filter exists
func (r *OrganizationRepositoryImpl) Exists(ctx context.Context, filter models.OrganizationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *OrganizationRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrganizationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
