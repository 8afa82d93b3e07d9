package businessflow

import (
	"context"
	"log"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"gorm.io/gorm"
)

// BackfillOptions controls a backfill run
type BackfillOptions struct {
	// OrganizationID scopes the run to a single organization when set
	OrganizationID *uint
	// DryRun performs all computation and logging but issues no writes
	DryRun bool
	// ActorID is recorded as created_by on ledger rows written by the run
	ActorID *uint
}

// OrganizationBackfillReport summarizes one organization's backfill outcome
type OrganizationBackfillReport struct {
	OrganizationID uint `json:"organization_id"`
	Scanned        int  `json:"scanned"`
	Assigned       int  `json:"assigned"`
	SkippedLedger  int  `json:"skipped_ledger"`
	FirstNumber    int  `json:"first_number,omitempty"`
	LastNumber     int  `json:"last_number,omitempty"`
}

// BackfillReport is the whole run's outcome
type BackfillReport struct {
	DryRun        bool                         `json:"dry_run"`
	Organizations []OrganizationBackfillReport `json:"organizations"`
}

// NumberBackfillFlow assigns contract numbers to historical rentals that
// predate the allocator. Rerunning it with no intervening allocator activity
// is a no-op.
type NumberBackfillFlow interface {
	Run(ctx context.Context, opts BackfillOptions) (*BackfillReport, error)
}

// NumberBackfillFlowImpl implements the backfill job
type NumberBackfillFlowImpl struct {
	orgRepo    repository.OrganizationRepository
	rentalRepo repository.RentalRepository
	ledgerRepo repository.SequenceLedgerRepository
	db         *gorm.DB
	logger     *log.Logger
}

// NewNumberBackfillFlow creates a new backfill flow instance
func NewNumberBackfillFlow(
	orgRepo repository.OrganizationRepository,
	rentalRepo repository.RentalRepository,
	ledgerRepo repository.SequenceLedgerRepository,
	db *gorm.DB,
	logger *log.Logger,
) NumberBackfillFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &NumberBackfillFlowImpl{
		orgRepo:    orgRepo,
		rentalRepo: rentalRepo,
		ledgerRepo: ledgerRepo,
		db:         db,
		logger:     logger,
	}
}

// Run processes the selected organizations one at a time, each inside its own
// transaction under the same organization-row-lock discipline as the
// allocator, so a live allocation and a backfill for the same organization
// can never interleave.
func (f *NumberBackfillFlowImpl) Run(ctx context.Context, opts BackfillOptions) (*BackfillReport, error) {
	orgs, err := f.selectOrganizations(ctx, opts)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{DryRun: opts.DryRun}
	for _, org := range orgs {
		orgReport, err := f.backfillOrganization(ctx, org.ID, opts)
		if err != nil {
			return nil, NewBusinessErrorf("BACKFILL_ORGANIZATION_FAILED", "Backfill failed for organization %d", err, org.ID)
		}
		report.Organizations = append(report.Organizations, *orgReport)
	}
	return report, nil
}

func (f *NumberBackfillFlowImpl) selectOrganizations(ctx context.Context, opts BackfillOptions) ([]*models.Organization, error) {
	if opts.OrganizationID != nil {
		org, err := f.orgRepo.ByID(ctx, *opts.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, NewBusinessErrorf("ORGANIZATION_NOT_FOUND", "Organization %d not found", ErrOrganizationNotFound, *opts.OrganizationID)
		}
		return []*models.Organization{org}, nil
	}
	return f.orgRepo.ListActiveRenters(ctx)
}

func (f *NumberBackfillFlowImpl) backfillOrganization(ctx context.Context, organizationID uint, opts BackfillOptions) (*OrganizationBackfillReport, error) {
	report := &OrganizationBackfillReport{OrganizationID: organizationID}

	err := repository.WithRetryableTransaction(ctx, f.db, utils.MaxAllocationAttempts, func(txCtx context.Context) error {
		org, err := f.orgRepo.LockByID(txCtx, organizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return NewBusinessErrorf("ORGANIZATION_NOT_FOUND", "Organization %d not found", ErrOrganizationNotFound, organizationID)
		}

		// Taking the max of both sources guards against ledger/rentals
		// divergence left by prior partial runs.
		ledgerMax, err := f.ledgerRepo.MaxNumberForOrganization(txCtx, organizationID)
		if err != nil {
			return err
		}
		rentalMax, err := f.rentalRepo.MaxNumberID(txCtx, organizationID)
		if err != nil {
			return err
		}
		next := utils.MaxInt(ledgerMax, rentalMax) + 1
		if next < 1 {
			next = 1
		}

		missing, err := f.rentalRepo.ListMissingNumber(txCtx, organizationID)
		if err != nil {
			return err
		}
		report.Scanned = len(missing)

		for _, rental := range missing {
			exists, err := f.ledgerRepo.ExistsForRental(txCtx, organizationID, rental.ID)
			if err != nil {
				return err
			}
			if exists {
				report.SkippedLedger++
				f.logger.Printf("backfill: organization %d rental %d already in ledger, skipping", organizationID, rental.ID)
				continue
			}

			f.logger.Printf("backfill: organization %d rental %d -> number %d (dry_run=%t)", organizationID, rental.ID, next, opts.DryRun)
			if !opts.DryRun {
				if err := f.rentalRepo.AssignNumber(txCtx, rental.ID, next); err != nil {
					return err
				}
				entry := &models.SequenceLedgerEntry{
					OrganizationID: organizationID,
					RentalID:       rental.ID,
					NumberID:       next,
					CreatedBy:      opts.ActorID,
					CreatedAt:      utils.UTCNow(),
				}
				if err := f.ledgerRepo.Save(txCtx, entry); err != nil {
					return err
				}
			}

			if report.Assigned == 0 {
				report.FirstNumber = next
			}
			report.LastNumber = next
			report.Assigned++
			next++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
