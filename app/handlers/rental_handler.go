// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/middleware"
	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// RentalHandlerInterface defines the contract for rental handlers
type RentalHandlerInterface interface {
	CreateRental(c fiber.Ctx) error
	GetRental(c fiber.Ctx) error
	CloseRental(c fiber.Ctx) error
	BackfillNumbers(c fiber.Ctx) error
}

// RentalHandler handles rental-related HTTP requests
type RentalHandler struct {
	rentalFlow   businessflow.RentalFlow
	closeFlow    businessflow.CloseRentalFlow
	backfillFlow businessflow.NumberBackfillFlow
	validator    *validator.Validate
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(
	rentalFlow businessflow.RentalFlow,
	closeFlow businessflow.CloseRentalFlow,
	backfillFlow businessflow.NumberBackfillFlow,
) *RentalHandler {
	return &RentalHandler{
		rentalFlow:   rentalFlow,
		closeFlow:    closeFlow,
		backfillFlow: backfillFlow,
		validator:    validator.New(),
	}
}

func (h *RentalHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RentalHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateRental handles rental creation with contract number allocation
func (h *RentalHandler) CreateRental(c fiber.Ctx) error {
	organizationID, err := strconv.ParseUint(c.Params("organization_id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization id", "INVALID_ORGANIZATION_ID", nil)
	}

	var req dto.CreateRentalRequest
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

	req.OrganizationID = uint(organizationID)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.rentalFlow.CreateRental(h.createRequestContext(c, "/api/v1/organizations/:organization_id/rentals"), &req, metadata)
	if err != nil {
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}
		if businessflow.IsOrganizationArchived(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Organization is archived", "ORGANIZATION_ARCHIVED", nil)
		}
		if businessflow.IsInvalidDateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Dropoff must be after pickup", "RENTAL_INVALID_RANGE", nil)
		}

		middleware.RecordNumberAllocation("error")
		log.Println("Rental creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rental creation failed", "RENTAL_CREATION_FAILED", nil)
	}

	middleware.RecordNumberAllocation("ok")
	return h.SuccessResponse(c, fiber.StatusCreated, "Rental created successfully", result.Rental)
}

// GetRental returns a rental by id
func (h *RentalHandler) GetRental(c fiber.Ctx) error {
	rentalID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rental id", "INVALID_RENTAL_ID", nil)
	}

	result, err := h.rentalFlow.GetRental(h.createRequestContext(c, "/api/v1/rentals/:id"), uint(rentalID))
	if err != nil {
		if businessflow.IsRentalNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rental not found", "RENTAL_NOT_FOUND", nil)
		}

		log.Println("Rental lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rental lookup failed", "RENTAL_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rental retrieved successfully", result)
}

// CloseRental runs the close guard and, unless check_only is set, performs
// the close transition when every precondition passes
func (h *RentalHandler) CloseRental(c fiber.Ctx) error {
	rentalID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rental id", "INVALID_RENTAL_ID", nil)
	}

	var req dto.CloseRentalRequest
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

	rules := businessflow.DefaultCloseRules()
	if req.RequireSigned != nil {
		rules.RequireSigned = *req.RequireSigned
	}
	if req.RequireBasePayment != nil {
		rules.RequireBasePayment = *req.RequireBasePayment
	}
	if req.GraceMinutes != nil {
		rules.GraceMinutes = *req.GraceMinutes
	}

	ctx := h.createRequestContext(c, "/api/v1/rentals/:id/close")
	var result *businessflow.CloseCheckResult
	if req.CheckOnly {
		result, err = h.closeFlow.CheckClose(ctx, uint(rentalID), rules)
	} else {
		result, err = h.closeFlow.CloseRental(ctx, uint(rentalID), rules)
	}
	if err != nil {
		if businessflow.IsRentalNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rental not found", "RENTAL_NOT_FOUND", nil)
		}

		log.Println("Rental close failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rental close failed", "RENTAL_CLOSE_FAILED", nil)
	}

	resp := dto.CloseRentalResponse{
		OK:      result.OK,
		Code:    result.Code,
		Message: result.Message,
	}
	middleware.RecordCloseCheck(result.Code)
	if !result.OK {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.APIResponse{
			Success: false,
			Message: "Close preconditions not met",
			Data:    resp,
		})
	}
	message := "Rental closed successfully"
	if req.CheckOnly {
		message = "Rental can be closed"
	}
	return h.SuccessResponse(c, fiber.StatusOK, message, resp)
}

// BackfillNumbers runs the contract-number backfill job
func (h *RentalHandler) BackfillNumbers(c fiber.Ctx) error {
	var req dto.BackfillRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	opts := businessflow.BackfillOptions{
		OrganizationID: req.OrganizationID,
		DryRun:         req.DryRun,
	}
	if actorID, ok := c.Locals("user_id").(uint); ok {
		opts.ActorID = &actorID
	}

	report, err := h.backfillFlow.Run(h.createRequestContext(c, "/api/v1/admin/rentals/backfill-numbers"), opts)
	if err != nil {
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}

		log.Println("Number backfill failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Number backfill failed", "BACKFILL_FAILED", nil)
	}

	resp := dto.BackfillResponse{
		Message:       "Backfill completed",
		DryRun:        report.DryRun,
		Organizations: make([]dto.BackfillOrganizationDTO, 0, len(report.Organizations)),
	}
	for _, org := range report.Organizations {
		resp.Organizations = append(resp.Organizations, dto.BackfillOrganizationDTO{
			OrganizationID: org.OrganizationID,
			Scanned:        org.Scanned,
			Assigned:       org.Assigned,
			SkippedLedger:  org.SkippedLedger,
			FirstNumber:    org.FirstNumber,
			LastNumber:     org.LastNumber,
		})
	}
	return h.SuccessResponse(c, fiber.StatusOK, resp.Message, resp)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *RentalHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RentalHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	if actorID, ok := c.Locals("user_id").(uint); ok {
		ctx = context.WithValue(ctx, utils.ActorIDKey, actorID)
	}

	return ctx
}
