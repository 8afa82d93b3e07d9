package utils

import (
	"time"
)

// ContextKey is the type for request metadata keys carried into business flows
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	IPAddressKey ContextKey = "ip_address"
	UserAgentKey ContextKey = "user_agent"
	EndpointKey  ContextKey = "endpoint"
	TimeoutKey   ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
	ActorIDKey   ContextKey = "actor_id"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Rental and pricing constants
const (
	// EuroCurrency is the default pricelist currency code
	EuroCurrency = "EUR"

	// DefaultPricingTimezone is used when a pricelist does not pin an IANA zone
	DefaultPricingTimezone = "Europe/Rome"

	// HoursPerBillableDay is the size of one billable day unit
	HoursPerBillableDay = 24

	// MaxAllocationAttempts bounds the allocator retry loop on transient
	// database contention
	MaxAllocationAttempts = 3
)
