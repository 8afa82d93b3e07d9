package tests

import (
	"testing"
	"time"

	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	testingutil "github.com/Nastu94/gestionale-subnoleggio-sub002/testing"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCloseFlow(testDB *testingutil.TestDB) (businessflow.CloseRentalFlow, repository.RentalRepository) {
	rentalRepo := repository.NewRentalRepository(testDB.DB)
	checklistRepo := repository.NewChecklistRepository(testDB.DB)
	return businessflow.NewCloseRentalFlow(rentalRepo, checklistRepo, testDB.DB), rentalRepo
}

// checkedInRental creates a rental ready to close under the default rules
func checkedInRental(t *testing.T, testDB *testingutil.TestDB, fixtures *testingutil.TestFixtures, organizationID uint) *models.Rental {
	t.Helper()

	rental, err := fixtures.CreateTestRental(organizationID, utils.UTCNow().Add(-72*time.Hour))
	require.NoError(t, err)

	err = testDB.DB.Model(&models.Rental{}).Where("id = ?", rental.ID).Updates(map[string]any{
		"status":                  models.RentalStatusCheckedIn,
		"base_payment_registered": true,
	}).Error
	require.NoError(t, err)

	_, err = fixtures.CreateTestChecklist(rental.ID, models.ChecklistTypeReturn, false)
	require.NoError(t, err)

	return rental
}

func TestCloseRentalFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo := newCloseFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		t.Run("CheckCloseNeverMutates", func(t *testing.T) {
			rental := checkedInRental(t, testDB, fixtures, org.ID)

			result, err := flow.CheckClose(ctx, rental.ID, businessflow.DefaultCloseRules())
			require.NoError(t, err)
			assert.True(t, result.OK)

			found, err := rentalRepo.ByID(ctx, rental.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RentalStatusCheckedIn, found.Status)
			assert.Nil(t, found.ClosedAt)
		})

		t.Run("CloseRentalTransitions", func(t *testing.T) {
			rental := checkedInRental(t, testDB, fixtures, org.ID)

			result, err := flow.CloseRental(ctx, rental.ID, businessflow.DefaultCloseRules())
			require.NoError(t, err)
			assert.True(t, result.OK)

			found, err := rentalRepo.ByID(ctx, rental.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RentalStatusClosed, found.Status)
			require.NotNil(t, found.ClosedAt)
			assert.WithinDuration(t, utils.UTCNow(), *found.ClosedAt, 5*time.Second)
		})

		t.Run("FailedGuardLeavesTheRentalOpen", func(t *testing.T) {
			rental, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
			require.NoError(t, err)

			result, err := flow.CloseRental(ctx, rental.ID, businessflow.DefaultCloseRules())
			require.NoError(t, err)
			assert.False(t, result.OK)
			assert.Equal(t, businessflow.CloseFailNotCheckedIn, result.Code)

			found, err := rentalRepo.ByID(ctx, rental.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RentalStatusDraft, found.Status)
		})

		t.Run("MissingReturnChecklist", func(t *testing.T) {
			rental, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Rental{}).Where("id = ?", rental.ID).Updates(map[string]any{
				"status":                  models.RentalStatusCheckedIn,
				"base_payment_registered": true,
			}).Error
			require.NoError(t, err)

			result, err := flow.CloseRental(ctx, rental.ID, businessflow.DefaultCloseRules())
			require.NoError(t, err)
			assert.Equal(t, businessflow.CloseFailMissingReturnChecklist, result.Code)
		})

		t.Run("RentalNotFound", func(t *testing.T) {
			_, err := flow.CloseRental(ctx, 99999, businessflow.DefaultCloseRules())
			assert.True(t, businessflow.IsRentalNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCloseRentalFlowGraceWindow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo := newCloseFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		// A rental re-opened after its close keeps closed_at; the grace
		// window is judged against that original instant
		originalClose := utils.UTCNow().Add(-10 * time.Minute).Truncate(time.Second)
		reopened := checkedInRental(t, testDB, fixtures, org.ID)
		err = testDB.DB.Model(&models.Rental{}).Where("id = ?", reopened.ID).
			Update("closed_at", originalClose).Error
		require.NoError(t, err)

		t.Run("ExpiredWindowLocksTheSnapshot", func(t *testing.T) {
			rules := businessflow.DefaultCloseRules()
			rules.GraceMinutes = 5

			result, err := flow.CloseRental(ctx, reopened.ID, rules)
			require.NoError(t, err)
			assert.False(t, result.OK)
			assert.Equal(t, businessflow.CloseFailSnapshotLocked, result.Code)
		})

		t.Run("RecloseInsideTheWindowKeepsClosedAt", func(t *testing.T) {
			rules := businessflow.DefaultCloseRules()
			rules.GraceMinutes = 15

			result, err := flow.CloseRental(ctx, reopened.ID, rules)
			require.NoError(t, err)
			assert.True(t, result.OK)

			found, err := rentalRepo.ByID(ctx, reopened.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RentalStatusClosed, found.Status)
			require.NotNil(t, found.ClosedAt)
			assert.WithinDuration(t, originalClose, *found.ClosedAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminFeeFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		feeRateRepo := repository.NewFeeRateRepository(testDB.DB)
		rentalRepo := repository.NewRentalRepository(testDB.DB)
		chargeRepo := repository.NewRentalChargeRepository(testDB.DB)
		// nil redis client: every lookup goes straight to the database
		flow := businessflow.NewAdminFeeFlow(feeRateRepo, rentalRepo, chargeRepo, nil, nil)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err = fixtures.CreateTestFeeRate(org.ID, 12.5, jan1, nil)
		require.NoError(t, err)

		rental, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		_, err = fixtures.CreateTestCharge(rental.ID, models.ChargeKindDaily, 16000, true)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCharge(rental.ID, models.ChargeKindDeposit, 50000, false)
		require.NoError(t, err)

		t.Run("FindActivePercent", func(t *testing.T) {
			pct, err := flow.FindActivePercent(ctx, org.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.NotNil(t, pct)
			assert.Equal(t, 12.5, *pct)
		})

		t.Run("FindActivePercentNoCoverage", func(t *testing.T) {
			pct, err := flow.FindActivePercent(ctx, org.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			assert.Nil(t, pct)
		})

		t.Run("CalculateForRental", func(t *testing.T) {
			date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			calc, err := flow.CalculateForRental(ctx, rental.ID, &date)
			require.NoError(t, err)
			require.NotNil(t, calc.Percent)
			assert.Equal(t, 12.5, *calc.Percent)
			// Only the commissionable 16000 counts; 12.5% of it, half-up
			assert.Equal(t, int64(16000), calc.CommissionableTotal)
			assert.Equal(t, int64(2000), calc.AmountCents)
		})

		t.Run("CalculateForRentalWithoutRate", func(t *testing.T) {
			date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			calc, err := flow.CalculateForRental(ctx, rental.ID, &date)
			require.NoError(t, err)
			assert.Nil(t, calc.Percent)
			assert.Equal(t, int64(16000), calc.CommissionableTotal)
			assert.Equal(t, int64(0), calc.AmountCents)
		})

		t.Run("RentalNotFound", func(t *testing.T) {
			_, err := flow.CalculateForRental(ctx, 99999, nil)
			assert.True(t, businessflow.IsRentalNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
