package businessflow

import (
	"testing"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// basePricelist returns a minimal active pricelist priced in minor units
func basePricelist() *models.Pricelist {
	return &models.Pricelist{
		ID:            1,
		Name:          "Standard",
		Currency:      "EUR",
		Timezone:      "Europe/Rome",
		BaseDailyRate: 5000,
		Rounding:      models.RoundingModeNone,
		IsActive:      utils.ToPtr(true),
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestQuoteBillableDays(t *testing.T) {
	engine := NewPricingEngine()

	tests := []struct {
		name      string
		pickupAt  string
		dropoffAt string
		wantDays  int
	}{
		{
			name:      "exactly one day",
			pickupAt:  "2026-06-01T09:00:00+02:00",
			dropoffAt: "2026-06-02T09:00:00+02:00",
			wantDays:  1,
		},
		{
			name:      "one hour rounds up to one day",
			pickupAt:  "2026-06-01T09:00:00+02:00",
			dropoffAt: "2026-06-01T10:00:00+02:00",
			wantDays:  1,
		},
		{
			name:      "one day and one hour rounds up to two days",
			pickupAt:  "2026-06-01T09:00:00+02:00",
			dropoffAt: "2026-06-02T10:00:00+02:00",
			wantDays:  2,
		},
		{
			name: "spring forward keeps the day count on elapsed time",
			// Europe/Rome loses an hour on 2026-03-29; the same wall
			// clock pair is only 23 elapsed hours, still one day
			pickupAt:  "2026-03-28T10:00:00+01:00",
			dropoffAt: "2026-03-29T10:00:00+02:00",
			wantDays:  1,
		},
		{
			name:      "two calendar days across spring forward",
			pickupAt:  "2026-03-28T10:00:00+01:00",
			dropoffAt: "2026-03-30T10:00:00+02:00",
			wantDays:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := engine.Quote(basePricelist(), mustTime(t, tt.pickupAt), mustTime(t, tt.dropoffAt), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, quote.Days)
			assert.Equal(t, int64(tt.wantDays)*5000, quote.DailyTotal)
		})
	}
}

func TestQuoteWeekendSurcharge(t *testing.T) {
	engine := NewPricingEngine()

	pricelist := basePricelist()
	pricelist.WeekendSurchargePct = 20

	// Thursday 2026-06-04 to Sunday 2026-06-07: billable days are
	// Thursday, Friday and Saturday; only Saturday carries the surcharge
	pickup := mustTime(t, "2026-06-04T09:00:00+02:00")
	dropoff := mustTime(t, "2026-06-07T09:00:00+02:00")

	quote, err := engine.Quote(pricelist, pickup, dropoff, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, quote.Days)
	assert.Equal(t, int64(16000), quote.DailyTotal)
	assert.Equal(t, int64(16000), quote.Total)
}

func TestQuoteSeasonSurcharge(t *testing.T) {
	engine := NewPricingEngine()

	t.Run("first matching season wins", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Seasons = []models.Season{
			{
				Name:         "high season",
				StartDate:    mustTime(t, "2026-08-01T00:00:00Z"),
				EndDate:      mustTime(t, "2026-08-31T00:00:00Z"),
				SurchargePct: utils.ToPtr(50.0),
				Position:     0,
			},
			{
				Name:         "summer",
				StartDate:    mustTime(t, "2026-06-01T00:00:00Z"),
				EndDate:      mustTime(t, "2026-09-30T00:00:00Z"),
				SurchargePct: utils.ToPtr(10.0),
				Position:     1,
			},
		}

		// Monday 2026-08-03, one day inside both ranges
		quote, err := engine.Quote(pricelist,
			mustTime(t, "2026-08-03T09:00:00+02:00"),
			mustTime(t, "2026-08-04T09:00:00+02:00"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(7500), quote.DailyTotal)
	})

	t.Run("weekend and season surcharges are additive on the base rate", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.WeekendSurchargePct = 20
		pricelist.Seasons = []models.Season{
			{
				Name:         "high season",
				StartDate:    mustTime(t, "2026-08-01T00:00:00Z"),
				EndDate:      mustTime(t, "2026-08-31T00:00:00Z"),
				SurchargePct: utils.ToPtr(50.0),
			},
		}

		// Saturday 2026-08-01: 5000 + 20% + 50% of the base rate
		quote, err := engine.Quote(pricelist,
			mustTime(t, "2026-08-01T09:00:00+02:00"),
			mustTime(t, "2026-08-02T09:00:00+02:00"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(8500), quote.DailyTotal)
	})

	t.Run("season weekend override replaces the list percentage", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.WeekendSurchargePct = 20
		pricelist.Seasons = []models.Season{
			{
				Name:               "promo weekends",
				StartDate:          mustTime(t, "2026-08-01T00:00:00Z"),
				EndDate:            mustTime(t, "2026-08-31T00:00:00Z"),
				WeekendOverridePct: utils.ToPtr(5.0),
			},
		}

		// Saturday 2026-08-01 with the override: 5000 + 5%
		quote, err := engine.Quote(pricelist,
			mustTime(t, "2026-08-01T09:00:00+02:00"),
			mustTime(t, "2026-08-02T09:00:00+02:00"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5250), quote.DailyTotal)
	})
}

func TestQuoteOverage(t *testing.T) {
	engine := NewPricingEngine()

	pricelist := basePricelist()
	pricelist.IncludedKmPerDay = 100
	pricelist.ExtraKmRate = 20

	pickup := mustTime(t, "2026-06-01T09:00:00+02:00")
	dropoff := mustTime(t, "2026-06-04T09:00:00+02:00")

	t.Run("distance beyond the allowance is charged per km", func(t *testing.T) {
		// 3 days include 300 km; 350 expected leaves 50 km at 20
		quote, err := engine.Quote(pricelist, pickup, dropoff, 350)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), quote.OverageCharge)
		assert.Equal(t, int64(16000), quote.Total)
	})

	t.Run("distance within the allowance is free", func(t *testing.T) {
		quote, err := engine.Quote(pricelist, pickup, dropoff, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.OverageCharge)
	})

	t.Run("unconfigured allowance disables the charge", func(t *testing.T) {
		unlimited := basePricelist()
		quote, err := engine.Quote(unlimited, pickup, dropoff, 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.OverageCharge)
	})
}

func TestQuoteTiers(t *testing.T) {
	engine := NewPricingEngine()

	pickup := mustTime(t, "2026-06-01T09:00:00+02:00")
	dropoff := mustTime(t, "2026-06-08T09:00:00+02:00") // 7 days, includes a weekend

	t.Run("flat override replaces the daily subtotal", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.WeekendSurchargePct = 20
		pricelist.Tiers = []models.Tier{
			{
				Name:              "weekly",
				MinDays:           7,
				OverrideDailyRate: utils.ToPtr(int64(4000)),
			},
		}

		quote, err := engine.Quote(pricelist, pickup, dropoff, 0)
		require.NoError(t, err)
		require.NotNil(t, quote.Tier)
		assert.Equal(t, "weekly", quote.Tier.Name)
		// Weekend surcharges do not survive the override
		assert.Equal(t, int64(28000), quote.Total)
	})

	t.Run("percentage discount applies to the subtotal", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Tiers = []models.Tier{
			{
				Name:        "weekly",
				MinDays:     7,
				DiscountPct: utils.ToPtr(10.0),
			},
		}

		quote, err := engine.Quote(pricelist, pickup, dropoff, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(31500), quote.Total)
	})

	t.Run("first matching tier wins", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Tiers = []models.Tier{
			{
				Name:        "short",
				MinDays:     1,
				MaxDays:     utils.ToPtr(3),
				DiscountPct: utils.ToPtr(5.0),
			},
			{
				Name:        "any",
				MinDays:     1,
				DiscountPct: utils.ToPtr(50.0),
			},
		}

		quote, err := engine.Quote(pricelist,
			mustTime(t, "2026-06-01T09:00:00+02:00"),
			mustTime(t, "2026-06-03T09:00:00+02:00"), 0)
		require.NoError(t, err)
		require.NotNil(t, quote.Tier)
		assert.Equal(t, "short", quote.Tier.Name)
		assert.Equal(t, int64(9500), quote.Total)
	})

	t.Run("no matching tier leaves the subtotal untouched", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Tiers = []models.Tier{
			{Name: "monthly", MinDays: 28},
		}

		quote, err := engine.Quote(pricelist, pickup, dropoff, 0)
		require.NoError(t, err)
		assert.Nil(t, quote.Tier)
		assert.Equal(t, int64(35000), quote.Total)
	})
}

func TestQuoteRounding(t *testing.T) {
	engine := NewPricingEngine()

	pickup := mustTime(t, "2026-06-01T09:00:00+02:00")
	dropoff := mustTime(t, "2026-06-02T09:00:00+02:00")

	tests := []struct {
		name      string
		dailyRate int64
		mode      models.RoundingMode
		want      int64
	}{
		{name: "none leaves cents alone", dailyRate: 10001, mode: models.RoundingModeNone, want: 10001},
		{name: "up_1 rounds to the next whole unit", dailyRate: 10001, mode: models.RoundingModeUp1, want: 10100},
		{name: "up_1 leaves a whole unit untouched", dailyRate: 10000, mode: models.RoundingModeUp1, want: 10000},
		{name: "up_5 rounds to the next multiple of five units", dailyRate: 10001, mode: models.RoundingModeUp5, want: 10500},
		{name: "up_5 leaves a five-unit boundary untouched", dailyRate: 10000, mode: models.RoundingModeUp5, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricelist := basePricelist()
			pricelist.BaseDailyRate = tt.dailyRate
			pricelist.Rounding = tt.mode

			quote, err := engine.Quote(pricelist, pickup, dropoff, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, quote.Total)
		})
	}
}

func TestQuoteDeposit(t *testing.T) {
	engine := NewPricingEngine()

	pricelist := basePricelist()
	pricelist.DepositAmount = utils.ToPtr(int64(50000))

	quote, err := engine.Quote(pricelist,
		mustTime(t, "2026-06-01T09:00:00+02:00"),
		mustTime(t, "2026-06-02T09:00:00+02:00"), 0)
	require.NoError(t, err)
	require.NotNil(t, quote.DepositAmount)
	assert.Equal(t, int64(50000), *quote.DepositAmount)
	// The deposit is reported but never folded into the total
	assert.Equal(t, int64(5000), quote.Total)
}

func TestQuoteValidation(t *testing.T) {
	engine := NewPricingEngine()

	pickup := mustTime(t, "2026-06-01T09:00:00+02:00")
	dropoff := mustTime(t, "2026-06-02T09:00:00+02:00")

	t.Run("nil pricelist", func(t *testing.T) {
		_, err := engine.Quote(nil, pickup, dropoff, 0)
		assert.True(t, IsPricelistNotFound(err))
	})

	t.Run("dropoff not after pickup", func(t *testing.T) {
		_, err := engine.Quote(basePricelist(), dropoff, pickup, 0)
		assert.True(t, IsInvalidDateRange(err))
	})

	t.Run("negative expected distance", func(t *testing.T) {
		_, err := engine.Quote(basePricelist(), pickup, dropoff, -1)
		assert.Error(t, err)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Timezone = "Mars/Olympus"
		_, err := engine.Quote(pricelist, pickup, dropoff, 0)
		assert.Error(t, err)
	})

	t.Run("unknown rounding mode", func(t *testing.T) {
		pricelist := basePricelist()
		pricelist.Rounding = models.RoundingMode("down_1")
		_, err := engine.Quote(pricelist, pickup, dropoff, 0)
		assert.Error(t, err)
	})
}
