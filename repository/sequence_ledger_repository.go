package repository

import (
	"context"
	"fmt"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"gorm.io/gorm"
)

// SequenceLedgerRepositoryImpl implements SequenceLedgerRepository. The
// ledger is insert-only; this type deliberately does not embed the generic
// base repository so that no update or delete surface exists.
type SequenceLedgerRepositoryImpl struct {
	db *gorm.DB
}

// NewSequenceLedgerRepository creates a new sequence ledger repository
func NewSequenceLedgerRepository(db *gorm.DB) SequenceLedgerRepository {
	return &SequenceLedgerRepositoryImpl{db: db}
}

func (r *SequenceLedgerRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// Save appends one allocation record. The uniqueness constraints on
// (organization_id, rental_id) and (organization_id, number_id) make a
// duplicate insert fail rather than silently corrupt the sequence.
func (r *SequenceLedgerRepositoryImpl) Save(ctx context.Context, entry *models.SequenceLedgerEntry) error {
	db := r.getDB(ctx)
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append sequence ledger entry: %w", err)
	}
	return nil
}

// MaxNumberForOrganization returns the highest allocated number for the
// organization, 0 when the ledger has no rows for it.
func (r *SequenceLedgerRepositoryImpl) MaxNumberForOrganization(ctx context.Context, organizationID uint) (int, error) {
	db := r.getDB(ctx)
	var max *int
	err := db.Model(&models.SequenceLedgerEntry{}).
		Where("organization_id = ?", organizationID).
		Select("MAX(number_id)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger max for organization %d: %w", organizationID, err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ExistsForRental checks whether an allocation was already recorded for the
// (organization, rental) pair
func (r *SequenceLedgerRepositoryImpl) ExistsForRental(ctx context.Context, organizationID, rentalID uint) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.SequenceLedgerEntry{}).
		Where("organization_id = ? AND rental_id = ?", organizationID, rentalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOrganization returns the organization's allocation history in
// allocation order
func (r *SequenceLedgerRepositoryImpl) ListByOrganization(ctx context.Context, organizationID uint, limit, offset int) ([]*models.SequenceLedgerEntry, error) {
	db := r.getDB(ctx)
	var entries []*models.SequenceLedgerEntry

	query := db.Where("organization_id = ?", organizationID).
		Order("number_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByOrganization returns the number of ledger rows for the organization
func (r *SequenceLedgerRepositoryImpl) CountByOrganization(ctx context.Context, organizationID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.SequenceLedgerEntry{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
