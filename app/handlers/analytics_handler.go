package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	businessflow "github.com/amirphl/Yatagarasu/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Defaults applied when pagination or window query parameters are absent
// or unparseable. Range clamping happens in the flow layer.
const (
	DefaultHistoryLimit = 50
	DefaultDailyDays    = 30
)

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	Track(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Daily(c fiber.Ctx) error
	Geo(c fiber.Ctx) error
}

// AnalyticsHandler handles click ingestion and aggregation HTTP requests.
// Error responses use the platform envelope; success responses are flat
// DTOs because sibling services read fields like totalClicks directly
// off the body.
type AnalyticsHandler struct {
	trackFlow businessflow.TrackClickFlow
	statsFlow businessflow.ClickStatsFlow
	validator *validator.Validate
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(trackFlow businessflow.TrackClickFlow, statsFlow businessflow.ClickStatsFlow) *AnalyticsHandler {
	return &AnalyticsHandler{
		trackFlow: trackFlow,
		statsFlow: statsFlow,
		validator: validator.New(),
	}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// Track records one click event against a short code
func (h *AnalyticsHandler) Track(c fiber.Ctx) error {
	var req dto.TrackClickRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referer = c.Get("Referer")
	metadata.RequestID = c.Get("X-Request-ID")
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		metadata.SetForwardedFor(forwarded)
	}

	result, err := h.trackFlow.Track(h.createRequestContext(c, "/api/analytics/track"), &req, metadata)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		log.Printf("track click failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Stats returns the point-in-time counters for one short code
func (h *AnalyticsHandler) Stats(c fiber.Ctx) error {
	shortCode := c.Params("shortCode")

	result, err := h.statsFlow.Stats(h.createRequestContext(c, "/api/analytics/:shortCode"), shortCode)
	if err != nil {
		log.Printf("stats query failed for %q: %v", shortCode, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// History returns a newest-first page of raw clicks
func (h *AnalyticsHandler) History(c fiber.Ctx) error {
	shortCode := c.Params("shortCode")
	limit := queryInt(c, "limit", DefaultHistoryLimit)
	offset := queryInt(c, "offset", 0)

	result, err := h.statsFlow.History(h.createRequestContext(c, "/api/analytics/:shortCode/history"), shortCode, limit, offset)
	if err != nil {
		log.Printf("history query failed for %q: %v", shortCode, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Daily returns the per-UTC-day click series
func (h *AnalyticsHandler) Daily(c fiber.Ctx) error {
	shortCode := c.Params("shortCode")
	days := queryInt(c, "days", DefaultDailyDays)

	result, err := h.statsFlow.Daily(h.createRequestContext(c, "/api/analytics/:shortCode/daily"), shortCode, days)
	if err != nil {
		log.Printf("daily query failed for %q: %v", shortCode, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Geo returns the per-country and per-city breakdown
func (h *AnalyticsHandler) Geo(c fiber.Ctx) error {
	shortCode := c.Params("shortCode")

	result, err := h.statsFlow.Geo(h.createRequestContext(c, "/api/analytics/:shortCode/geo"), shortCode)
	if err != nil {
		log.Printf("geo query failed for %q: %v", shortCode, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or not a number
func queryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
