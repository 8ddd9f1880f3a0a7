package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	"github.com/amirphl/Yatagarasu/app/services"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"
)

// HealthHandler reports process liveness and per-component health. The
// database is the only hard dependency; a broken cache or disabled
// geolocation degrades the report but not the status code.
type HealthHandler struct {
	db      *gorm.DB
	cache   services.StatsCache
	geoip   services.GeoIPService
	service string
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, cache services.StatsCache, geoip services.GeoIPService, service, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		geoip:   geoip,
		service: service,
		version: version,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbHealthy := h.databaseHealthy(ctx)

	resp := dto.HealthResponse{
		Status:          "healthy",
		Service:         h.service,
		Version:         h.version,
		DatabaseHealthy: dbHealthy,
		CacheHealthy:    h.cache.Healthy(ctx),
		GeoIPEnabled:    h.geoip.Enabled(),
	}

	status := fiber.StatusOK
	if !dbHealthy {
		resp.Status = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func (h *HealthHandler) databaseHealthy(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
