// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	"github.com/amirphl/Yatagarasu/app/handlers"
	"github.com/amirphl/Yatagarasu/app/middleware"
	"github.com/amirphl/Yatagarasu/config"
	"github.com/amirphl/Yatagarasu/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.ProductionConfig
	analyticsHandler handlers.AnalyticsHandlerInterface
	healthHandler    *handlers.HealthHandler
	auth             *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	analyticsHandler handlers.AnalyticsHandlerInterface,
	healthHandler *handlers.HealthHandler,
	auth *middleware.AuthMiddleware,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Yatagarasu Analytics API",
		ServerHeader: "Yatagarasu",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		analyticsHandler: analyticsHandler,
		healthHandler:    healthHandler,
		auth:             auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Health check route (no auth, no rate limiting)
	r.app.Get("/health", r.healthHandler.Health)

	// Build information; authentication optional
	r.app.Get("/version", r.versionHandler, r.auth.OptionalAuth())

	// Prometheus metrics exposure
	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/analytics")

	// Per-IP sliding window limiters. Internal service callers are exempt:
	// the auth middleware classifies the request before the limiter runs.
	ingestionLimiter := r.newRateLimiter(r.cfg.Security.IngestionRateLimit, r.cfg.Security.IngestionRateWindow)
	readLimiter := r.newRateLimiter(r.cfg.Security.ReadRateLimit, r.cfg.Security.ReadRateWindow)

	// Ingestion: trusted backends by internal key, everyone else by token
	api.Post("/track", r.analyticsHandler.Track, r.auth.InternalOrAuthenticate(), ingestionLimiter)

	// Point stats are readable by the URL registry as well as end users
	api.Get("/:shortCode", r.analyticsHandler.Stats, r.auth.InternalOrAuthenticate(), readLimiter)

	// Detailed views require an end-user token; the internal key alone is
	// not accepted here
	api.Get("/:shortCode/history", r.analyticsHandler.History, r.auth.Authenticate(), readLimiter)
	api.Get("/:shortCode/daily", r.analyticsHandler.Daily, r.auth.Authenticate(), readLimiter)
	api.Get("/:shortCode/geo", r.analyticsHandler.Geo, r.auth.Authenticate(), readLimiter)

	// 404 handler for unmatched routes
	r.app.Use(r.notFoundHandler)

	log.Println("Routes setup completed")
}

// newRateLimiter builds a sliding-window per-IP limiter with the standard
// 429 response. Requests already classified as internal service skip it.
func (r *FiberRouter) newRateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return middleware.IsInternalService(c)
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000, // 1 year
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Structured access logging
	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				// Skip logging for health checks in production
				return c.Path() == "/health"
			},
		}))
	}

	// HTTP-level Prometheus metrics
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// versionHandler reports build information
func (r *FiberRouter) versionHandler(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     r.cfg.Deployment.ServiceName,
		"version":     r.cfg.Deployment.Version,
		"commit":      r.cfg.Deployment.CommitHash,
		"buildTime":   r.cfg.Deployment.BuildTime,
		"environment": r.cfg.Deployment.Environment,
	})
}

// notFoundHandler handles requests to undefined routes
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
