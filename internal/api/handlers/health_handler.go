package handlers

import (
	"statement-parser/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /healthz [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok"})
}
