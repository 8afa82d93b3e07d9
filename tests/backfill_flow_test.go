package tests

import (
	"testing"

	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	testingutil "github.com/Nastu94/gestionale-subnoleggio-sub002/testing"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackfillFlow(testDB *testingutil.TestDB) (businessflow.NumberBackfillFlow, repository.RentalRepository, repository.SequenceLedgerRepository) {
	orgRepo := repository.NewOrganizationRepository(testDB.DB)
	rentalRepo := repository.NewRentalRepository(testDB.DB)
	ledgerRepo := repository.NewSequenceLedgerRepository(testDB.DB)
	flow := businessflow.NewNumberBackfillFlow(orgRepo, rentalRepo, ledgerRepo, testDB.DB, nil)
	return flow, rentalRepo, ledgerRepo
}

func TestBackfillAssignsInCreationOrder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo, ledgerRepo := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		first, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		second, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		third, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)

		actor := utils.ToPtr(uint(3))
		report, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID, ActorID: actor})
		require.NoError(t, err)
		require.Len(t, report.Organizations, 1)

		orgReport := report.Organizations[0]
		assert.Equal(t, org.ID, orgReport.OrganizationID)
		assert.Equal(t, 3, orgReport.Scanned)
		assert.Equal(t, 3, orgReport.Assigned)
		assert.Equal(t, 0, orgReport.SkippedLedger)
		assert.Equal(t, 1, orgReport.FirstNumber)
		assert.Equal(t, 3, orgReport.LastNumber)

		for i, id := range []uint{first.ID, second.ID, third.ID} {
			rental, err := rentalRepo.ByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, rental.NumberID)
			assert.Equal(t, i+1, *rental.NumberID)
		}

		count, err := ledgerRepo.CountByOrganization(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		entries, err := ledgerRepo.ListByOrganization(ctx, org.ID, 10, 0)
		require.NoError(t, err)
		for _, entry := range entries {
			require.NotNil(t, entry.CreatedBy)
			assert.Equal(t, uint(3), *entry.CreatedBy)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestBackfillContinuesAfterExistingNumbers(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo, _ := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		numbered, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		require.NoError(t, rentalRepo.AssignNumber(ctx, numbered.ID, 7))

		missing, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)

		report, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID})
		require.NoError(t, err)
		require.Len(t, report.Organizations, 1)
		assert.Equal(t, 8, report.Organizations[0].FirstNumber)
		assert.Equal(t, 8, report.Organizations[0].LastNumber)

		rental, err := rentalRepo.ByID(ctx, missing.ID)
		require.NoError(t, err)
		require.NotNil(t, rental.NumberID)
		assert.Equal(t, 8, *rental.NumberID)

		return nil
	})
	require.NoError(t, err)
}

func TestBackfillSkipsRentalsAlreadyLedgered(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo, ledgerRepo := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		// Divergent state left by an interrupted run: the ledger row exists
		// but the rental never received its number
		orphan, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		require.NoError(t, ledgerRepo.Save(ctx, &models.SequenceLedgerEntry{
			OrganizationID: org.ID,
			RentalID:       orphan.ID,
			NumberID:       4,
			CreatedAt:      utils.UTCNow(),
		}))

		clean, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)

		report, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID})
		require.NoError(t, err)
		require.Len(t, report.Organizations, 1)

		orgReport := report.Organizations[0]
		assert.Equal(t, 2, orgReport.Scanned)
		assert.Equal(t, 1, orgReport.SkippedLedger)
		assert.Equal(t, 1, orgReport.Assigned)
		assert.Equal(t, 5, orgReport.FirstNumber)

		// The orphan stays untouched; resolving it is a manual operation
		rental, err := rentalRepo.ByID(ctx, orphan.ID)
		require.NoError(t, err)
		assert.Nil(t, rental.NumberID)

		rental, err = rentalRepo.ByID(ctx, clean.ID)
		require.NoError(t, err)
		require.NotNil(t, rental.NumberID)
		assert.Equal(t, 5, *rental.NumberID)

		return nil
	})
	require.NoError(t, err)
}

func TestBackfillDryRunWritesNothing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo, ledgerRepo := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)
		rental, err := fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)

		report, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID, DryRun: true})
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		require.Len(t, report.Organizations, 1)
		assert.Equal(t, 1, report.Organizations[0].Assigned)
		assert.Equal(t, 1, report.Organizations[0].FirstNumber)

		found, err := rentalRepo.ByID(ctx, rental.ID)
		require.NoError(t, err)
		assert.Nil(t, found.NumberID)

		count, err := ledgerRepo.CountByOrganization(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		return nil
	})
	require.NoError(t, err)
}

func TestBackfillRerunIsANoOp(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, _, ledgerRepo := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)
		_, err = fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)
		_, err = fixtures.CreateTestRental(org.ID, utils.UTCNow())
		require.NoError(t, err)

		first, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, first.Organizations[0].Assigned)

		second, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &org.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, second.Organizations[0].Scanned)
		assert.Equal(t, 0, second.Organizations[0].Assigned)

		count, err := ledgerRepo.CountByOrganization(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		return nil
	})
	require.NoError(t, err)
}

func TestBackfillScope(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow, rentalRepo, _ := newBackfillFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		target, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)
		other, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		_, err = fixtures.CreateTestRental(target.ID, utils.UTCNow())
		require.NoError(t, err)
		untouched, err := fixtures.CreateTestRental(other.ID, utils.UTCNow())
		require.NoError(t, err)

		t.Run("ScopedRunLeavesOtherOrganizationsAlone", func(t *testing.T) {
			report, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &target.ID})
			require.NoError(t, err)
			require.Len(t, report.Organizations, 1)
			assert.Equal(t, target.ID, report.Organizations[0].OrganizationID)

			rental, err := rentalRepo.ByID(ctx, untouched.ID)
			require.NoError(t, err)
			assert.Nil(t, rental.NumberID)
		})

		t.Run("UnscopedRunCoversAllActiveRenters", func(t *testing.T) {
			report, err := flow.Run(ctx, businessflow.BackfillOptions{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(report.Organizations), 2)

			rental, err := rentalRepo.ByID(ctx, untouched.ID)
			require.NoError(t, err)
			require.NotNil(t, rental.NumberID)
			assert.Equal(t, 1, *rental.NumberID)
		})

		t.Run("UnknownOrganization", func(t *testing.T) {
			missing := uint(99999)
			_, err := flow.Run(ctx, businessflow.BackfillOptions{OrganizationID: &missing})
			assert.True(t, businessflow.IsOrganizationNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
