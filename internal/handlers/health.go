package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"payflow/internal/repositories/cache"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Service
}

func NewHealthHandler(db *gorm.DB, cacheSvc *cache.Service) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheSvc}
}

// Check reports process liveness plus dependency reachability. A degraded
// dependency answers 503 so load balancers rotate the instance out.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{"database": "ok", "cache": "ok"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		checks["database"] = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	if h.cache == nil {
		checks["cache"] = "disabled"
	} else if err := h.cache.Ping(c.Context()); err != nil {
		checks["cache"] = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"success": status == fiber.StatusOK,
		"data":    checks,
	})
}
