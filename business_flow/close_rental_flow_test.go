package businessflow

import (
	"testing"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
)

// closableRental returns a rental that passes every default precondition
func closableRental() *models.Rental {
	return &models.Rental{
		ID:                    1,
		OrganizationID:        1,
		Status:                models.RentalStatusCheckedIn,
		BasePaymentRegistered: utils.ToPtr(true),
	}
}

func returnChecklist() *models.Checklist {
	return &models.Checklist{
		RentalID: 1,
		Type:     models.ChecklistTypeReturn,
	}
}

func TestCloseGuardPreconditionOrder(t *testing.T) {
	guard := NewCloseRentalGuard()
	now := utils.UTCNow()

	rules := DefaultCloseRules()
	rules.RequireSigned = true

	t.Run("draft rental fails first on status", func(t *testing.T) {
		rental := closableRental()
		rental.Status = models.RentalStatusDraft
		// Every later precondition also fails, but status is reported
		result := guard.Check(CloseCheckInput{Rental: rental}, rules, now)
		assert.False(t, result.OK)
		assert.Equal(t, CloseFailNotCheckedIn, result.Code)
	})

	t.Run("missing return checklist", func(t *testing.T) {
		result := guard.Check(CloseCheckInput{Rental: closableRental()}, rules, now)
		assert.False(t, result.OK)
		assert.Equal(t, CloseFailMissingReturnChecklist, result.Code)
	})

	t.Run("missing signatures", func(t *testing.T) {
		input := CloseCheckInput{
			Rental:          closableRental(),
			ReturnChecklist: returnChecklist(),
		}
		result := guard.Check(input, rules, now)
		assert.False(t, result.OK)
		assert.Equal(t, CloseFailMissingSignatures, result.Code)
	})

	t.Run("signed contract without signed pickup checklist", func(t *testing.T) {
		rental := closableRental()
		rental.SignatureAttached = utils.ToPtr(true)
		input := CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
			PickupChecklist: &models.Checklist{Type: models.ChecklistTypePickup},
		}
		result := guard.Check(input, rules, now)
		assert.Equal(t, CloseFailMissingSignatures, result.Code)
	})

	t.Run("base payment missing", func(t *testing.T) {
		rental := closableRental()
		rental.BasePaymentRegistered = utils.ToPtr(false)
		input := CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
		}
		result := guard.Check(input, DefaultCloseRules(), now)
		assert.Equal(t, CloseFailBasePaymentMissing, result.Code)
	})

	t.Run("overage required but unpaid", func(t *testing.T) {
		rental := closableRental()
		rental.OveragePaymentRequired = utils.ToPtr(true)
		input := CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
		}
		result := guard.Check(input, DefaultCloseRules(), now)
		assert.Equal(t, CloseFailOverageUnpaid, result.Code)
	})

	t.Run("all preconditions satisfied", func(t *testing.T) {
		rental := closableRental()
		rental.SignatureAttached = utils.ToPtr(true)
		rental.OveragePaymentRequired = utils.ToPtr(true)
		rental.OveragePaymentRegistered = utils.ToPtr(true)
		input := CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
			PickupChecklist: &models.Checklist{
				Type:              models.ChecklistTypePickup,
				SignatureAttached: utils.ToPtr(true),
			},
		}
		result := guard.Check(input, rules, now)
		assert.True(t, result.OK)
		assert.Empty(t, result.Code)
	})
}

func TestCloseGuardRelaxedRules(t *testing.T) {
	guard := NewCloseRentalGuard()
	now := utils.UTCNow()

	t.Run("signatures not required by default", func(t *testing.T) {
		input := CloseCheckInput{
			Rental:          closableRental(),
			ReturnChecklist: returnChecklist(),
		}
		result := guard.Check(input, DefaultCloseRules(), now)
		assert.True(t, result.OK)
	})

	t.Run("base payment waived", func(t *testing.T) {
		rental := closableRental()
		rental.BasePaymentRegistered = utils.ToPtr(false)
		input := CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
		}
		result := guard.Check(input, CloseRules{}, now)
		assert.True(t, result.OK)
	})
}

func TestCloseGuardGraceWindow(t *testing.T) {
	guard := NewCloseRentalGuard()
	now := utils.UTCNow()

	previouslyClosed := func(ago time.Duration) CloseCheckInput {
		rental := closableRental()
		rental.ClosedAt = utils.ToPtr(now.Add(-ago))
		return CloseCheckInput{
			Rental:          rental,
			ReturnChecklist: returnChecklist(),
		}
	}

	t.Run("no grace window locks any prior close", func(t *testing.T) {
		result := guard.Check(previouslyClosed(time.Second), DefaultCloseRules(), now)
		assert.False(t, result.OK)
		assert.Equal(t, CloseFailSnapshotLocked, result.Code)
	})

	t.Run("close older than the window is locked", func(t *testing.T) {
		rules := DefaultCloseRules()
		rules.GraceMinutes = 5
		result := guard.Check(previouslyClosed(10*time.Minute), rules, now)
		assert.Equal(t, CloseFailSnapshotLocked, result.Code)
	})

	t.Run("close inside the window may be redone", func(t *testing.T) {
		rules := DefaultCloseRules()
		rules.GraceMinutes = 15
		result := guard.Check(previouslyClosed(10*time.Minute), rules, now)
		assert.True(t, result.OK)
	})
}
