package businessflow

import (
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/shopspring/decimal"
)

// TierSummary exposes only the client-safe fields of the matched tier
type TierSummary struct {
	Name              string   `json:"name"`
	OverrideDailyRate *int64   `json:"override_daily_rate,omitempty"`
	DiscountPct       *float64 `json:"discount_pct,omitempty"`
}

// QuoteResult is the outcome of a pricing computation. All amounts are
// integer minor units. Every field is safe to hand to the contract-rendering
// boundary; internal margin figures never appear here.
type QuoteResult struct {
	Days          int          `json:"days"`
	DailyTotal    int64        `json:"daily_total"`
	OverageCharge int64        `json:"overage_charge"`
	Tier          *TierSummary `json:"tier,omitempty"`
	DepositAmount *int64       `json:"deposit_amount,omitempty"`
	Total         int64        `json:"total"`
	Currency      string       `json:"currency"`
}

// PricingEngine computes rental quotes from a pricelist, a date range and an
// expected distance. It is a pure calculator with no storage dependencies.
type PricingEngine struct{}

// NewPricingEngine creates a new pricing engine
func NewPricingEngine() *PricingEngine {
	return &PricingEngine{}
}

// Quote prices a rental. Billable days are counted from real elapsed time
// (max(1, ceil(hours/24)), so daylight-saving shifts never change the day
// count for a given pair of instants), while weekend and season matching
// classify each day's calendar date in the pricelist's zone.
func (e *PricingEngine) Quote(pricelist *models.Pricelist, pickupAt, dropoffAt time.Time, expectedKm int64) (*QuoteResult, error) {
	if pricelist == nil {
		return nil, NewBusinessError("PRICELIST_NOT_FOUND", "Pricelist is required", ErrPricelistNotFound)
	}
	if !dropoffAt.After(pickupAt) {
		return nil, NewBusinessError("QUOTE_INVALID_RANGE", "Dropoff must be after pickup", ErrInvalidDateRange)
	}
	if expectedKm < 0 {
		return nil, NewBusinessError("QUOTE_INVALID_DISTANCE", "Expected distance cannot be negative", ErrInvalidExpectedKm)
	}
	if pricelist.BaseDailyRate < 0 {
		return nil, NewBusinessError("QUOTE_INVALID_RATE", "Base daily rate cannot be negative", ErrNegativeBaseDailyRate)
	}
	if !pricelist.Rounding.Valid() {
		return nil, NewBusinessErrorf("QUOTE_INVALID_ROUNDING", "Unknown rounding mode %q", ErrInvalidRoundingMode, pricelist.Rounding)
	}

	zone := pricelist.Timezone
	if zone == "" {
		zone = utils.DefaultPricingTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, NewBusinessErrorf("QUOTE_INVALID_TIMEZONE", "Unknown timezone %q", ErrInvalidTimezone, zone)
	}

	days := billableDays(pickupAt, dropoffAt)

	// Per-day accumulation: base rate plus independently additive weekend
	// and season surcharges, each computed on the base rate.
	startDate := utils.TruncateToDate(pickupAt, loc)
	var dailyTotal int64
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i)
		season := matchSeason(pricelist.Seasons, date)

		charge := pricelist.BaseDailyRate
		if isWeekend(date) {
			weekendPct := pricelist.WeekendSurchargePct
			if season != nil && season.WeekendOverridePct != nil {
				weekendPct = *season.WeekendOverridePct
			}
			charge += applyPercent(pricelist.BaseDailyRate, weekendPct)
		}
		if season != nil && season.SurchargePct != nil {
			charge += applyPercent(pricelist.BaseDailyRate, *season.SurchargePct)
		}
		dailyTotal += charge
	}

	overage := overageCharge(pricelist, days, expectedKm)
	subtotal := dailyTotal + overage

	result := &QuoteResult{
		Days:          days,
		DailyTotal:    dailyTotal,
		OverageCharge: overage,
		DepositAmount: pricelist.DepositAmount,
		Currency:      pricelist.Currency,
	}

	if tier := matchTier(pricelist.Tiers, days); tier != nil {
		result.Tier = &TierSummary{
			Name:              tier.Name,
			OverrideDailyRate: tier.OverrideDailyRate,
			DiscountPct:       tier.DiscountPct,
		}
		switch {
		case tier.OverrideDailyRate != nil:
			// The flat override replaces the whole daily subtotal and
			// deliberately bypasses weekend/season surcharges.
			subtotal = *tier.OverrideDailyRate*int64(days) + overage
		case tier.DiscountPct != nil && *tier.DiscountPct > 0:
			subtotal -= applyPercent(subtotal, *tier.DiscountPct)
		}
	}

	result.Total = roundTotal(subtotal, pricelist.Rounding)
	return result, nil
}

// billableDays counts 24-hour units of real elapsed time, partial units
// rounding up, never fewer than 1.
func billableDays(pickupAt, dropoffAt time.Time) int {
	minutes := int64(dropoffAt.Sub(pickupAt) / time.Minute)
	days := utils.CeilDiv(minutes, utils.HoursPerBillableDay*60)
	if days < 1 {
		days = 1
	}
	return int(days)
}

// isWeekend reports whether the date is a Saturday or Sunday
func isWeekend(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// matchSeason returns the first season containing the date, list order being
// the only priority.
func matchSeason(seasons []models.Season, date time.Time) *models.Season {
	for i := range seasons {
		if seasons[i].Contains(date) {
			return &seasons[i]
		}
	}
	return nil
}

// matchTier returns the first tier matching the day count, list order being
// the only priority.
func matchTier(tiers []models.Tier, days int) *models.Tier {
	for i := range tiers {
		if tiers[i].Matches(days) {
			return &tiers[i]
		}
	}
	return nil
}

// overageCharge prices distance beyond the included allowance. Both the
// per-day allowance and the per-km rate must be configured, otherwise the
// charge is zero.
func overageCharge(pricelist *models.Pricelist, days int, expectedKm int64) int64 {
	if pricelist.IncludedKmPerDay <= 0 || pricelist.ExtraKmRate <= 0 {
		return 0
	}
	included := pricelist.IncludedKmPerDay * int64(days)
	excess := expectedKm - included
	if excess <= 0 {
		return 0
	}
	return excess * pricelist.ExtraKmRate
}

// applyPercent computes round-half-up(amount * pct / 100) in minor units
func applyPercent(amount int64, pct float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// roundTotal applies the pricelist's final rounding, always upward: up_1
// rounds to the next whole currency unit, up_5 to the next multiple of 5
// units. Amounts already on a boundary are untouched.
func roundTotal(amount int64, mode models.RoundingMode) int64 {
	var step int64
	switch mode {
	case models.RoundingModeUp1:
		step = 100
	case models.RoundingModeUp5:
		step = 500
	default:
		return amount
	}
	if rem := amount % step; rem != 0 {
		return amount + step - rem
	}
	return amount
}
