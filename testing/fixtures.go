// Package testing provides test utilities and database setup for testing the rental back-office
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestOrganization creates an organization of the given type
func (tf *TestFixtures) CreateTestOrganization(orgType models.OrganizationType) (*models.Organization, error) {
	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	org := &models.Organization{
		Name:     fmt.Sprintf("Test Renter %s", suffix),
		Type:     orgType,
		Email:    utils.ToPtr(fmt.Sprintf("renter.%s@example.com", suffix)),
		Phone:    utils.ToPtr("0612345678"),
		VATCode:  utils.ToPtr(fmt.Sprintf("IT%09d00", rand.Intn(900000000)+100000000)),
		IsActive: utils.ToPtr(true),
	}
	if orgType == models.OrganizationTypeAdmin {
		org.Name = fmt.Sprintf("Platform Admin %s", suffix)
	}

	if err := tf.DB.DB.Create(org).Error; err != nil {
		return nil, fmt.Errorf("failed to create test organization: %w", err)
	}

	return org, nil
}

// CreateTestRental creates a draft rental for the organization. NumberID is
// left unset so allocator and backfill tests start from an unnumbered row.
func (tf *TestFixtures) CreateTestRental(organizationID uint, pickupAt time.Time) (*models.Rental, error) {
	rental := &models.Rental{
		OrganizationID: organizationID,
		CustomerName:   "Mario Rossi",
		Status:         models.RentalStatusDraft,
		PickupAt:       pickupAt.UTC(),
		DropoffAt:      pickupAt.UTC().Add(48 * time.Hour),
		ExpectedKm:     200,
	}

	if err := tf.DB.DB.Create(rental).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rental: %w", err)
	}

	return rental, nil
}

// CreateTestPricelist creates an active pricelist with no seasons or tiers.
// Rates are integer minor units.
func (tf *TestFixtures) CreateTestPricelist(organizationID *uint) (*models.Pricelist, error) {
	pricelist := &models.Pricelist{
		OrganizationID:      organizationID,
		Name:                fmt.Sprintf("Standard %06d", rand.Intn(900000)+100000),
		Currency:            "EUR",
		Timezone:            "Europe/Rome",
		BaseDailyRate:       5000,
		WeekendSurchargePct: 0,
		IncludedKmPerDay:    100,
		ExtraKmRate:         20,
		Rounding:            models.RoundingModeNone,
		IsActive:            utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(pricelist).Error; err != nil {
		return nil, fmt.Errorf("failed to create test pricelist: %w", err)
	}

	return pricelist, nil
}

// CreateTestSeason attaches a date-range season to the pricelist
func (tf *TestFixtures) CreateTestSeason(pricelistID uint, name string, start, end time.Time, surchargePct *float64, position int) (*models.Season, error) {
	season := &models.Season{
		PricelistID:  pricelistID,
		Name:         name,
		StartDate:    start,
		EndDate:      end,
		SurchargePct: surchargePct,
		Position:     position,
	}

	if err := tf.DB.DB.Create(season).Error; err != nil {
		return nil, fmt.Errorf("failed to create test season: %w", err)
	}

	return season, nil
}

// CreateTestTier attaches a day-count tier to the pricelist
func (tf *TestFixtures) CreateTestTier(pricelistID uint, name string, minDays int, maxDays *int, overrideRate *int64, discountPct *float64, position int) (*models.Tier, error) {
	tier := &models.Tier{
		PricelistID:       pricelistID,
		Name:              name,
		MinDays:           minDays,
		MaxDays:           maxDays,
		OverrideDailyRate: overrideRate,
		DiscountPct:       discountPct,
		Position:          position,
	}

	if err := tf.DB.DB.Create(tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tier: %w", err)
	}

	return tier, nil
}

// CreateTestFeeRate creates a commission rate effective from the given date
func (tf *TestFixtures) CreateTestFeeRate(organizationID uint, percent float64, from time.Time, to *time.Time) (*models.FeeRate, error) {
	rate := &models.FeeRate{
		OrganizationID: organizationID,
		Percent:        percent,
		EffectiveFrom:  from,
		EffectiveTo:    to,
	}

	if err := tf.DB.DB.Create(rate).Error; err != nil {
		return nil, fmt.Errorf("failed to create test fee rate: %w", err)
	}

	return rate, nil
}

// CreateTestChecklist creates a completed checklist of the given type
func (tf *TestFixtures) CreateTestChecklist(rentalID uint, checklistType models.ChecklistType, signed bool) (*models.Checklist, error) {
	checklist := &models.Checklist{
		RentalID:          rentalID,
		Type:              checklistType,
		OdometerKm:        utils.ToPtr(int64(42000)),
		FuelLevelPct:      utils.ToPtr(80),
		SignatureAttached: utils.ToPtr(signed),
		CompletedAt:       utils.ToPtr(utils.UTCNow()),
	}

	if err := tf.DB.DB.Create(checklist).Error; err != nil {
		return nil, fmt.Errorf("failed to create test checklist: %w", err)
	}

	return checklist, nil
}

// CreateTestCharge creates a money line-item on the rental
func (tf *TestFixtures) CreateTestCharge(rentalID uint, kind string, amountCents int64, commissionable bool) (*models.RentalCharge, error) {
	charge := &models.RentalCharge{
		RentalID:       rentalID,
		Kind:           kind,
		AmountCents:    amountCents,
		Currency:       "EUR",
		Commissionable: utils.ToPtr(commissionable),
	}

	if err := tf.DB.DB.Create(charge).Error; err != nil {
		return nil, fmt.Errorf("failed to create test charge: %w", err)
	}

	return charge, nil
}

// CreateTestVehicle creates an active fleet vehicle
func (tf *TestFixtures) CreateTestVehicle() (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		Plate:    fmt.Sprintf("FA%03dBC", rand.Intn(900)+100),
		Make:     "Fiat",
		Model:    "Panda",
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create test vehicle: %w", err)
	}

	return vehicle, nil
}

// CreateTestAssignment grants the organization use of the vehicle for the window
func (tf *TestFixtures) CreateTestAssignment(vehicleID, organizationID uint, startsAt, endsAt time.Time) (*models.VehicleAssignment, error) {
	assignment := &models.VehicleAssignment{
		VehicleID:      vehicleID,
		OrganizationID: organizationID,
		StartsAt:       startsAt.UTC(),
		EndsAt:         endsAt.UTC(),
		Status:         models.AssignmentStatusActive,
	}

	if err := tf.DB.DB.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assignment: %w", err)
	}

	return assignment, nil
}
