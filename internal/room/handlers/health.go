package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger - зависимость, без которой сервис не готов (база дизайнов).
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe проверяет доступность базы дизайнов.
func (h *RoomHandler) ReadinessProbe(db Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				h.logger.Warn("readiness check failed", "error", err)
				return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "not ready",
				})
			}
		}
		return c.JSON(fiber.Map{
			"status":   "ready",
			"sessions": h.store.Len(),
		})
	}
}
