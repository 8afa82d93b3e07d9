package businessflow

import (
	"context"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
)

// PricingFlow produces quotes against stored pricelists
type PricingFlow interface {
	QuotePricelist(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error)
}

// PricingFlowImpl implements the pricing business flow
type PricingFlowImpl struct {
	pricelistRepo repository.PricelistRepository
	engine        *PricingEngine
}

// NewPricingFlow creates a new pricing flow instance
func NewPricingFlow(pricelistRepo repository.PricelistRepository) PricingFlow {
	return &PricingFlowImpl{
		pricelistRepo: pricelistRepo,
		engine:        NewPricingEngine(),
	}
}

// QuotePricelist loads the pricelist with its season and tier rules and runs
// the pricing engine over the requested range.
func (f *PricingFlowImpl) QuotePricelist(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	pickupAt, err := time.Parse(time.RFC3339, req.PickupAt)
	if err != nil {
		return nil, NewBusinessError("QUOTE_INVALID_PICKUP", "Pickup time must be RFC3339", err)
	}
	dropoffAt, err := time.Parse(time.RFC3339, req.DropoffAt)
	if err != nil {
		return nil, NewBusinessError("QUOTE_INVALID_DROPOFF", "Dropoff time must be RFC3339", err)
	}

	pricelist, err := f.pricelistRepo.ByIDWithRules(ctx, req.PricelistID)
	if err != nil {
		return nil, NewBusinessError("QUOTE_PRICELIST_LOAD_FAILED", "Failed to load pricelist", err)
	}
	if pricelist == nil {
		return nil, NewBusinessErrorf("PRICELIST_NOT_FOUND", "Pricelist %d not found", ErrPricelistNotFound, req.PricelistID)
	}
	if !utils.IsTrue(pricelist.IsActive) {
		return nil, NewBusinessErrorf("PRICELIST_INACTIVE", "Pricelist %d is inactive", ErrPricelistInactive, req.PricelistID)
	}

	quote, err := f.engine.Quote(pricelist, pickupAt, dropoffAt, req.ExpectedKm)
	if err != nil {
		return nil, err
	}

	return toQuoteResponse(quote), nil
}

func toQuoteResponse(quote *QuoteResult) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		Days:          quote.Days,
		DailyTotal:    quote.DailyTotal,
		OverageCharge: quote.OverageCharge,
		DepositAmount: quote.DepositAmount,
		Total:         quote.Total,
		Currency:      quote.Currency,
	}
	if quote.Tier != nil {
		resp.Tier = &dto.QuoteTierDTO{
			Name:              quote.Tier.Name,
			OverrideDailyRate: quote.Tier.OverrideDailyRate,
			DiscountPct:       quote.Tier.DiscountPct,
		}
	}
	return resp
}
