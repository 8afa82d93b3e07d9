package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"gorm.io/gorm"
)

// Close-guard failure codes, reported in precondition order
const (
	CloseFailNotCheckedIn           = "not_checked_in"
	CloseFailMissingReturnChecklist = "missing_return_checklist"
	CloseFailMissingSignatures      = "missing_signatures"
	CloseFailBasePaymentMissing     = "base_payment_missing"
	CloseFailOverageUnpaid          = "overage_unpaid"
	CloseFailSnapshotLocked         = "snapshot_locked"
)

// CloseRules configures the close guard's preconditions
type CloseRules struct {
	RequireSigned      bool `json:"require_signed"`
	RequireBasePayment bool `json:"require_base_payment"`
	GraceMinutes       int  `json:"grace_minutes"`
}

// DefaultCloseRules returns the standard rule set: base payment required,
// signatures optional, no re-close grace window.
func DefaultCloseRules() CloseRules {
	return CloseRules{RequireBasePayment: true}
}

// CloseCheckResult is the guard's structured verdict. Failures are results,
// not errors: the caller presents Code and Message to the operator.
type CloseCheckResult struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CloseCheckInput bundles the state the guard inspects
type CloseCheckInput struct {
	Rental          *models.Rental
	PickupChecklist *models.Checklist
	ReturnChecklist *models.Checklist
}

// CloseRentalGuard decides whether a rental may transition from checked_in to
// closed. It is a pure check and never performs the transition itself.
type CloseRentalGuard struct{}

// NewCloseRentalGuard creates a new close guard
func NewCloseRentalGuard() *CloseRentalGuard {
	return &CloseRentalGuard{}
}

// Check evaluates the preconditions sequentially; the first failing condition
// short-circuits so the reported message names the most actionable problem.
func (g *CloseRentalGuard) Check(input CloseCheckInput, rules CloseRules, now time.Time) CloseCheckResult {
	rental := input.Rental

	if rental.Status != models.RentalStatusCheckedIn {
		return closeFailure(CloseFailNotCheckedIn, fmt.Sprintf("rental is %s, not checked_in", rental.Status))
	}

	if input.ReturnChecklist == nil {
		return closeFailure(CloseFailMissingReturnChecklist, "return checklist has not been completed")
	}

	if rules.RequireSigned {
		pickupSigned := input.PickupChecklist != nil && utils.IsTrue(input.PickupChecklist.SignatureAttached)
		if !utils.IsTrue(rental.SignatureAttached) || !pickupSigned {
			return closeFailure(CloseFailMissingSignatures, "contract and pickup checklist signatures are required")
		}
	}

	if rules.RequireBasePayment && !utils.IsTrue(rental.BasePaymentRegistered) {
		return closeFailure(CloseFailBasePaymentMissing, "base payment has not been registered")
	}

	if utils.IsTrue(rental.OveragePaymentRequired) && !utils.IsTrue(rental.OveragePaymentRegistered) {
		return closeFailure(CloseFailOverageUnpaid, "distance overage payment has not been registered")
	}

	if rental.ClosedAt != nil {
		grace := time.Duration(rules.GraceMinutes) * time.Minute
		if grace <= 0 || now.Sub(*rental.ClosedAt) > grace {
			return closeFailure(CloseFailSnapshotLocked, "rental snapshot is locked; the re-open grace window has passed")
		}
	}

	return CloseCheckResult{OK: true}
}

func closeFailure(code, message string) CloseCheckResult {
	return CloseCheckResult{OK: false, Code: code, Message: message}
}

// CloseRentalFlow runs the guard against stored state and, on a passing
// check, performs the checked_in -> closed transition.
type CloseRentalFlow interface {
	CheckClose(ctx context.Context, rentalID uint, rules CloseRules) (*CloseCheckResult, error)
	CloseRental(ctx context.Context, rentalID uint, rules CloseRules) (*CloseCheckResult, error)
}

// CloseRentalFlowImpl implements the close rental business flow
type CloseRentalFlowImpl struct {
	rentalRepo    repository.RentalRepository
	checklistRepo repository.ChecklistRepository
	guard         *CloseRentalGuard
	db            *gorm.DB
}

// NewCloseRentalFlow creates a new close rental flow instance
func NewCloseRentalFlow(
	rentalRepo repository.RentalRepository,
	checklistRepo repository.ChecklistRepository,
	db *gorm.DB,
) CloseRentalFlow {
	return &CloseRentalFlowImpl{
		rentalRepo:    rentalRepo,
		checklistRepo: checklistRepo,
		guard:         NewCloseRentalGuard(),
		db:            db,
	}
}

// CheckClose loads the rental and its checklists and runs the guard without
// mutating anything.
func (f *CloseRentalFlowImpl) CheckClose(ctx context.Context, rentalID uint, rules CloseRules) (*CloseCheckResult, error) {
	input, err := f.loadCheckInput(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	result := f.guard.Check(*input, rules, utils.UTCNow())
	return &result, nil
}

// CloseRental runs the guard and, when it passes, closes the rental. The
// original closed_at is preserved on a re-close within the grace window so
// the lock clock never restarts.
func (f *CloseRentalFlowImpl) CloseRental(ctx context.Context, rentalID uint, rules CloseRules) (*CloseCheckResult, error) {
	var result CloseCheckResult
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		input, err := f.loadCheckInput(txCtx, rentalID)
		if err != nil {
			return err
		}

		result = f.guard.Check(*input, rules, utils.UTCNow())
		if !result.OK {
			return nil
		}

		closedAt := utils.UTCNow()
		if input.Rental.ClosedAt != nil {
			closedAt = *input.Rental.ClosedAt
		}
		return f.rentalRepo.Close(txCtx, rentalID, closedAt)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (f *CloseRentalFlowImpl) loadCheckInput(ctx context.Context, rentalID uint) (*CloseCheckInput, error) {
	rental, err := f.rentalRepo.ByID(ctx, rentalID)
	if err != nil {
		return nil, NewBusinessError("CLOSE_RENTAL_LOAD_FAILED", "Failed to load rental", err)
	}
	if rental == nil {
		return nil, NewBusinessErrorf("RENTAL_NOT_FOUND", "Rental %d not found", ErrRentalNotFound, rentalID)
	}

	pickup, err := f.checklistRepo.ByRentalAndType(ctx, rentalID, models.ChecklistTypePickup)
	if err != nil {
		return nil, NewBusinessError("CLOSE_RENTAL_LOAD_FAILED", "Failed to load pickup checklist", err)
	}
	ret, err := f.checklistRepo.ByRentalAndType(ctx, rentalID, models.ChecklistTypeReturn)
	if err != nil {
		return nil, NewBusinessError("CLOSE_RENTAL_LOAD_FAILED", "Failed to load return checklist", err)
	}

	return &CloseCheckInput{
		Rental:          rental,
		PickupChecklist: pickup,
		ReturnChecklist: ret,
	}, nil
}
