package handlers

import (
	"github.com/gofiber/fiber/v2"

	"recruitforge/hiring-engine/internal/services"
)

type HealthHandler struct {
	gateway services.Gateway
}

func NewHealthHandler(gateway services.Gateway) *HealthHandler {
	return &HealthHandler{gateway: gateway}
}

// HandleProviderHealth handles GET /providers/health
func (h *HealthHandler) HandleProviderHealth(c *fiber.Ctx) error {
	snapshots := h.gateway.HealthCheck(c.UserContext())
	return c.JSON(fiber.Map{
		"providers": snapshots,
	})
}
