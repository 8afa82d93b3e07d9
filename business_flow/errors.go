// Package businessflow contains the core business logic for the rental back-office
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Organization-related errors
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrOrganizationArchived  = errors.New("organization is archived")
	ErrOrganizationNotRenter = errors.New("organization is not a renter")

	// Allocation-related errors
	ErrCreateCallbackNil       = errors.New("rental creation callback is nil")
	ErrRentalNotPersisted      = errors.New("creation callback returned an unpersisted rental")
	ErrRentalWrongOrganization = errors.New("creation callback returned a rental bound to another organization")
	ErrRentalWrongNumber       = errors.New("creation callback returned a rental with an unexpected number")

	// Rental-related errors
	ErrRentalNotFound      = errors.New("rental not found")
	ErrRentalAlreadyClosed = errors.New("rental already closed")

	// Pricing-related errors
	ErrPricelistNotFound      = errors.New("pricelist not found")
	ErrPricelistInactive      = errors.New("pricelist is inactive")
	ErrInvalidDateRange       = errors.New("dropoff must be after pickup")
	ErrInvalidExpectedKm      = errors.New("expected distance cannot be negative")
	ErrInvalidTimezone        = errors.New("pricelist timezone is invalid")
	ErrInvalidRoundingMode    = errors.New("pricelist rounding mode is invalid")
	ErrNegativeBaseDailyRate  = errors.New("pricelist base daily rate cannot be negative")

	// Fee-related errors
	ErrFeeRateNotFound = errors.New("no active fee rate for date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsOrganizationNotFound(err error) bool {
	return errors.Is(err, ErrOrganizationNotFound)
}

func IsOrganizationArchived(err error) bool {
	return errors.Is(err, ErrOrganizationArchived)
}

func IsRentalNotPersisted(err error) bool {
	return errors.Is(err, ErrRentalNotPersisted)
}

func IsRentalNotFound(err error) bool {
	return errors.Is(err, ErrRentalNotFound)
}

func IsRentalAlreadyClosed(err error) bool {
	return errors.Is(err, ErrRentalAlreadyClosed)
}

func IsPricelistNotFound(err error) bool {
	return errors.Is(err, ErrPricelistNotFound)
}

func IsPricelistInactive(err error) bool {
	return errors.Is(err, ErrPricelistInactive)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

func IsFeeRateNotFound(err error) bool {
	return errors.Is(err, ErrFeeRateNotFound)
}
