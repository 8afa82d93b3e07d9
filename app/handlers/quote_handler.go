// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// QuoteHandlerInterface defines the contract for quote handlers
type QuoteHandlerInterface interface {
	QuotePricelist(c fiber.Ctx) error
}

// QuoteHandler handles pricing quote HTTP requests
type QuoteHandler struct {
	pricingFlow businessflow.PricingFlow
	validator   *validator.Validate
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(pricingFlow businessflow.PricingFlow) *QuoteHandler {
	return &QuoteHandler{
		pricingFlow: pricingFlow,
		validator:   validator.New(),
	}
}

func (h *QuoteHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QuoteHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// QuotePricelist prices a prospective rental against a pricelist without
// persisting anything
func (h *QuoteHandler) QuotePricelist(c fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.pricingFlow.QuotePricelist(h.createRequestContext(c, "/api/v1/quotes"), &req)
	if err != nil {
		if businessflow.IsPricelistNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Pricelist not found", "PRICELIST_NOT_FOUND", nil)
		}
		if businessflow.IsPricelistInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Pricelist is inactive", "PRICELIST_INACTIVE", nil)
		}
		if businessflow.IsInvalidDateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Dropoff must be after pickup", "QUOTE_INVALID_RANGE", nil)
		}

		log.Println("Quote computation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Quote computation failed", "QUOTE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Quote computed successfully", result)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *QuoteHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
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
