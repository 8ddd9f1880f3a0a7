// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/Yatagarasu/app/dto"
	"github.com/amirphl/Yatagarasu/app/services"
	"github.com/gofiber/fiber/v3"
)

// InternalKeyHeader carries the shared secret identifying trusted backend
// callers (the URL registry, batch jobs). It is checked before any JWT work.
const InternalKeyHeader = "X-Internal-API-Key"

// AuthMiddleware classifies every request into one of three outcomes:
// internal service, authenticated user, or rejected.
type AuthMiddleware struct {
	tokenService   services.TokenService
	internalAPIKey string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService, internalAPIKey string) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService:   tokenService,
		internalAPIKey: internalAPIKey,
	}
}

// verifyInternalKey reports whether the request carries the exact internal
// service secret. An empty configured key never matches.
func (m *AuthMiddleware) verifyInternalKey(c fiber.Ctx) bool {
	key := c.Get(InternalKeyHeader)
	return key != "" && m.internalAPIKey != "" && key == m.internalAPIKey
}

// InternalOrAuthenticate admits trusted backend callers by internal key and
// everyone else by bearer token. Internal callers are marked on the request
// so the rate limiters can skip them.
func (m *AuthMiddleware) InternalOrAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.verifyInternalKey(c) {
			c.Locals("internal_service", true)
			return c.Next()
		}
		return m.authenticate(c)
	}
}

// Authenticate requires a valid end-user bearer token. A valid internal key
// alone is deliberately not enough for the endpoints using this middleware.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return m.authenticate
}

func (m *AuthMiddleware) authenticate(c fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Authentication required",
			Error: dto.ErrorDetail{
				Code: "AUTHENTICATION_REQUIRED",
			},
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Authentication required",
			Error: dto.ErrorDetail{
				Code: "AUTHENTICATION_REQUIRED",
			},
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Authentication required",
			Error: dto.ErrorDetail{
				Code: "AUTHENTICATION_REQUIRED",
			},
		})
	}

	claims, err := m.tokenService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Token expired",
				Error: dto.ErrorDetail{
					Code: "TOKEN_EXPIRED",
				},
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid token",
			Error: dto.ErrorDetail{
				Code: "TOKEN_INVALID",
			},
		})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("token_claims", claims)

	if requestID := c.Get("X-Request-ID"); requestID != "" {
		c.Locals("request_id", requestID)
	}

	return c.Next()
}

// OptionalAuth validates a bearer token when present but never rejects;
// anonymous and badly-authenticated requests proceed without an identity.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Next()
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Next()
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("token_claims", claims)
		return c.Next()
	}
}

// IsInternalService reports whether the request was admitted by internal key
func IsInternalService(c fiber.Ctx) bool {
	internal, ok := c.Locals("internal_service").(bool)
	return ok && internal
}

// GetUserIDFromContext extracts the authenticated user identity, if any
func GetUserIDFromContext(c fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	return userID, ok && userID != ""
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
