// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/services"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.validateRequest(c)
		if errResp != nil {
			return errResp
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)
		if claims.OrganizationID != nil {
			c.Locals("organization_id", *claims.OrganizationID)
		}

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// RequireAdmin validates the token and rejects non-admin roles
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, errResp := m.validateRequest(c)
		if errResp != nil {
			return errResp
		}

		if claims.Role != services.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin role required",
				Error:   dto.ErrorDetail{Code: "ADMIN_ROLE_REQUIRED"},
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

func (m *AuthMiddleware) validateRequest(c fiber.Ctx) (*services.TokenClaims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Authorization header is required",
			Error:   dto.ErrorDetail{Code: "MISSING_AUTHORIZATION_HEADER"},
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid authorization header format. Expected 'Bearer <token>'",
			Error:   dto.ErrorDetail{Code: "INVALID_AUTHORIZATION_FORMAT"},
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Access token is required",
			Error:   dto.ErrorDetail{Code: "MISSING_ACCESS_TOKEN"},
		})
	}

	claims, err := m.tokenService.ValidateToken(token)
	if err != nil {
		var errorCode string
		var message string

		if errors.Is(err, services.ErrTokenExpired) {
			errorCode = "TOKEN_EXPIRED"
			message = "Access token has expired"
		} else if errors.Is(err, services.ErrTokenRevoked) {
			errorCode = "TOKEN_REVOKED"
			message = "Access token has been revoked"
		} else {
			errorCode = "TOKEN_INVALID"
			message = "Invalid access token"
		}

		return nil, c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: message,
			Error:   dto.ErrorDetail{Code: errorCode},
		})
	}

	return claims, nil
}

// GetUserIDFromContext extracts the authenticated user id from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok
}

// GetOrganizationIDFromContext extracts the token's organization scope
func GetOrganizationIDFromContext(c fiber.Ctx) (uint, bool) {
	organizationID, ok := c.Locals("organization_id").(uint)
	return organizationID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
