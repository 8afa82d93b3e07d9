package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// VehicleAssignmentRepositoryImpl implements VehicleAssignmentRepository interface
type VehicleAssignmentRepositoryImpl struct {
	*BaseRepository[models.VehicleAssignment, models.VehicleAssignmentFilter]
}

// NewVehicleAssignmentRepository creates a new vehicle assignment repository
func NewVehicleAssignmentRepository(db *gorm.DB) VehicleAssignmentRepository {
	return &VehicleAssignmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.VehicleAssignment, models.VehicleAssignmentFilter](db),
	}
}

// ListExpiredActive returns active assignments whose window ended before asOf
func (r *VehicleAssignmentRepositoryImpl) ListExpiredActive(ctx context.Context, asOf time.Time) ([]*models.VehicleAssignment, error) {
	db := r.getDB(ctx)
	var assignments []*models.VehicleAssignment
	err := db.Where("status = ? AND ends_at < ?", models.AssignmentStatusActive, asOf).
		Order("ends_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// CloseAssignment marks an assignment closed and stamps closed_at
func (r *VehicleAssignmentRepositoryImpl) CloseAssignment(ctx context.Context, assignmentID uint, closedAt time.Time) error {
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

	err = db.Model(&models.VehicleAssignment{}).
		Where("id = ? AND status = ?", assignmentID, models.AssignmentStatusActive).
		Updates(map[string]any{
			"status":    models.AssignmentStatusClosed,
			"closed_at": closedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to close assignment %d: %w", assignmentID, err)
	}
	return nil
}

// ByFilter retrieves assignments based on filter criteria
func (r *VehicleAssignmentRepositoryImpl) ByFilter(ctx context.Context, filter models.VehicleAssignmentFilter, orderBy string, limit, offset int) ([]*models.VehicleAssignment, error) {
	db := r.getDB(ctx)
	var assignments []*models.VehicleAssignment

	query := db.Model(&models.VehicleAssignment{})
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

	err := query.Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Count returns the number of assignments matching the filter
func (r *VehicleAssignmentRepositoryImpl) Count(ctx context.Context, filter models.VehicleAssignmentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.VehicleAssignment{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any assignment matching the filter exists
func (r *VehicleAssignmentRepositoryImpl) Exists(ctx context.Context, filter models.VehicleAssignmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *VehicleAssignmentRepositoryImpl) applyFilter(query *gorm.DB, filter models.VehicleAssignmentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}
