package handlers

import (
	"github.com/gofiber/fiber/v3"

	"cad-exporter/internal/exporter/ifc"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe отвечает, пока процесс экспорта принимает запросы.
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe сообщает, какие выгрузки доступны. Базы и внешних сервисов у
// экспортёра нет, так что готовность равна старту процесса.
func ReadinessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ready",
		"formats": []string{"ifc", "dxf"},
		"schemas": []string{string(ifc.SchemaIFC4), string(ifc.SchemaIFC2X3)},
	})
}
