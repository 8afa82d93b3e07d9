// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/gofiber/fiber/v3"
)

// FeeHandlerInterface defines the contract for admin fee handlers
type FeeHandlerInterface interface {
	GetActivePercent(c fiber.Ctx) error
	GetRentalFee(c fiber.Ctx) error
}

// FeeHandler handles admin commission HTTP requests
type FeeHandler struct {
	feeFlow businessflow.AdminFeeFlow
}

// NewFeeHandler creates a new fee handler
func NewFeeHandler(feeFlow businessflow.AdminFeeFlow) *FeeHandler {
	return &FeeHandler{feeFlow: feeFlow}
}

func (h *FeeHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *FeeHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetActivePercent returns the commission percentage effective for an
// organization on a date. The date query parameter defaults to today.
func (h *FeeHandler) GetActivePercent(c fiber.Ctx) error {
	organizationID, err := strconv.ParseUint(c.Params("organization_id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization id", "INVALID_ORGANIZATION_ID", nil)
	}

	date := utils.UTCNow()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Date must be YYYY-MM-DD", "INVALID_DATE", nil)
		}
	}

	percent, err := h.feeFlow.FindActivePercent(h.createRequestContext(c, "/api/v1/admin/organizations/:organization_id/fee-percent"), uint(organizationID), date)
	if err != nil {
		log.Println("Fee percent lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Fee percent lookup failed", "FEE_LOOKUP_FAILED", nil)
	}
	if percent == nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, "No fee rate active on date", "FEE_RATE_NOT_FOUND", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Fee percent retrieved successfully", fiber.Map{
		"organization_id": uint(organizationID),
		"date":            date.Format("2006-01-02"),
		"percent":         *percent,
	})
}

// GetRentalFee computes the admin commission owed on a rental
func (h *FeeHandler) GetRentalFee(c fiber.Ctx) error {
	rentalID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rental id", "INVALID_RENTAL_ID", nil)
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Date must be YYYY-MM-DD", "INVALID_DATE", nil)
		}
		date = &parsed
	}

	result, err := h.feeFlow.CalculateForRental(h.createRequestContext(c, "/api/v1/admin/rentals/:id/fee"), uint(rentalID), date)
	if err != nil {
		if businessflow.IsRentalNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rental not found", "RENTAL_NOT_FOUND", nil)
		}

		log.Println("Fee computation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Fee computation failed", "FEE_COMPUTATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Fee computed successfully", dto.RentalFeeResponse{
		RentalID:            uint(rentalID),
		Percent:             result.Percent,
		CommissionableTotal: result.CommissionableTotal,
		AmountCents:         result.AmountCents,
	})
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *FeeHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	timeout := 15 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
