package tests

import (
	"testing"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	testingutil "github.com/Nastu94/gestionale-subnoleggio-sub002/testing"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalFlow(testDB *testingutil.TestDB) businessflow.RentalFlow {
	orgRepo := repository.NewOrganizationRepository(testDB.DB)
	rentalRepo := repository.NewRentalRepository(testDB.DB)
	ledgerRepo := repository.NewSequenceLedgerRepository(testDB.DB)
	numberFlow := businessflow.NewRentalNumberFlow(orgRepo, ledgerRepo, testDB.DB)
	return businessflow.NewRentalFlow(rentalRepo, numberFlow)
}

func createRentalRequest(organizationID uint) *dto.CreateRentalRequest {
	pickup := utils.UTCNow().Add(24 * time.Hour)
	return &dto.CreateRentalRequest{
		OrganizationID: organizationID,
		CustomerName:   "Mario Rossi",
		PickupAt:       pickup.Format(time.RFC3339),
		DropoffAt:      pickup.Add(48 * time.Hour).Format(time.RFC3339),
		ExpectedKm:     200,
	}
}

func TestRentalFlowCreateRental(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRentalFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrganization(models.OrganizationTypeRenter)
		require.NoError(t, err)

		t.Run("CreatesNumberedDraft", func(t *testing.T) {
			resp, err := flow.CreateRental(ctx, createRentalRequest(org.ID), nil)
			require.NoError(t, err)
			require.NotNil(t, resp.Rental.NumberID)
			assert.Equal(t, 1, *resp.Rental.NumberID)
			assert.Equal(t, string(models.RentalStatusDraft), resp.Rental.Status)
			assert.Equal(t, "Mario Rossi", resp.Rental.CustomerName)
		})

		t.Run("SecondRentalTakesTheNextNumber", func(t *testing.T) {
			resp, err := flow.CreateRental(ctx, createRentalRequest(org.ID), nil)
			require.NoError(t, err)
			require.NotNil(t, resp.Rental.NumberID)
			assert.Equal(t, 2, *resp.Rental.NumberID)
		})

		t.Run("RejectsInvertedDateRange", func(t *testing.T) {
			req := createRentalRequest(org.ID)
			req.PickupAt, req.DropoffAt = req.DropoffAt, req.PickupAt
			_, err := flow.CreateRental(ctx, req, nil)
			assert.True(t, businessflow.IsInvalidDateRange(err))
		})

		t.Run("RejectsMalformedPickup", func(t *testing.T) {
			req := createRentalRequest(org.ID)
			req.PickupAt = "next tuesday"
			_, err := flow.CreateRental(ctx, req, nil)
			assert.Error(t, err)
		})

		t.Run("UnknownOrganization", func(t *testing.T) {
			_, err := flow.CreateRental(ctx, createRentalRequest(99999), nil)
			assert.True(t, businessflow.IsOrganizationNotFound(err))
		})

		t.Run("GetRental", func(t *testing.T) {
			resp, err := flow.CreateRental(ctx, createRentalRequest(org.ID), nil)
			require.NoError(t, err)

			found, err := flow.GetRental(ctx, resp.Rental.ID)
			require.NoError(t, err)
			assert.Equal(t, resp.Rental.ID, found.ID)
			assert.Equal(t, resp.Rental.NumberID, found.NumberID)
		})

		t.Run("GetRentalNotFound", func(t *testing.T) {
			_, err := flow.GetRental(ctx, 99999)
			assert.True(t, businessflow.IsRentalNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPricingFlowQuotePricelist(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		pricelistRepo := repository.NewPricelistRepository(testDB.DB)
		flow := businessflow.NewPricingFlow(pricelistRepo)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		pricelist, err := fixtures.CreateTestPricelist(nil)
		require.NoError(t, err)

		quoteRequest := func(pricelistID uint) *dto.QuoteRequest {
			return &dto.QuoteRequest{
				PricelistID: pricelistID,
				PickupAt:    "2026-06-01T09:00:00+02:00",
				DropoffAt:   "2026-06-04T09:00:00+02:00",
				ExpectedKm:  350,
			}
		}

		t.Run("QuoteWithStoredRules", func(t *testing.T) {
			resp, err := flow.QuotePricelist(ctx, quoteRequest(pricelist.ID))
			require.NoError(t, err)
			assert.Equal(t, 3, resp.Days)
			assert.Equal(t, int64(15000), resp.DailyTotal)
			assert.Equal(t, int64(1000), resp.OverageCharge)
			assert.Equal(t, int64(16000), resp.Total)
			assert.Equal(t, "EUR", resp.Currency)
		})

		t.Run("SeasonAndTierRulesAreLoadedInPositionOrder", func(t *testing.T) {
			ruled, err := fixtures.CreateTestPricelist(nil)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTier(ruled.ID, "any", 1, nil, nil, utils.ToPtr(50.0), 1)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTier(ruled.ID, "short", 1, utils.ToPtr(5), nil, utils.ToPtr(10.0), 0)
			require.NoError(t, err)

			resp, err := flow.QuotePricelist(ctx, quoteRequest(ruled.ID))
			require.NoError(t, err)
			require.NotNil(t, resp.Tier)
			// Lower position wins regardless of insertion order
			assert.Equal(t, "short", resp.Tier.Name)
		})

		t.Run("PricelistNotFound", func(t *testing.T) {
			_, err := flow.QuotePricelist(ctx, quoteRequest(99999))
			assert.True(t, businessflow.IsPricelistNotFound(err))
		})

		t.Run("InactivePricelist", func(t *testing.T) {
			inactive, err := fixtures.CreateTestPricelist(nil)
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Pricelist{}).Where("id = ?", inactive.ID).
				Update("is_active", false).Error
			require.NoError(t, err)

			_, err = flow.QuotePricelist(ctx, quoteRequest(inactive.ID))
			assert.True(t, businessflow.IsPricelistInactive(err))
		})

		t.Run("MalformedTimes", func(t *testing.T) {
			req := quoteRequest(pricelist.ID)
			req.DropoffAt = "yesterday"
			_, err := flow.QuotePricelist(ctx, req)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
