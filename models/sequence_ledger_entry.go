package models

import "time"

// SequenceLedgerEntry is the append-only audit record of every contract-number
// allocation. Rows are only ever inserted; the uniqueness constraints on
// (organization_id, rental_id) and (organization_id, number_id) are the
// database-level hardening of the allocator's invariants.
type SequenceLedgerEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint         `gorm:"not null;index:idx_sequence_ledger_org;uniqueIndex:uk_sequence_ledger_org_rental;uniqueIndex:uk_sequence_ledger_org_number" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"-"`

	RentalID uint   `gorm:"not null;uniqueIndex:uk_sequence_ledger_org_rental" json:"rental_id"`
	Rental   Rental `gorm:"foreignKey:RentalID;references:ID" json:"-"`

	NumberID int `gorm:"not null;uniqueIndex:uk_sequence_ledger_org_number" json:"number_id"`

	// CreatedBy is the acting back-office user, nil for system runs
	CreatedBy *uint `json:"created_by,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_sequence_ledger_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (SequenceLedgerEntry) TableName() string {
	return "sequence_ledger_entries"
}

// SequenceLedgerEntryFilter represents filter criteria for ledger queries
type SequenceLedgerEntryFilter struct {
	ID             *uint `json:"id,omitempty"`
	OrganizationID *uint `json:"organization_id,omitempty"`
	RentalID       *uint `json:"rental_id,omitempty"`
	NumberID       *int  `json:"number_id,omitempty"`
	CreatedBy      *uint `json:"created_by,omitempty"`
}
