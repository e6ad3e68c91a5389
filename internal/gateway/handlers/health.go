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

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe считает шлюз готовым, когда отвечает конфигуратор.
func ReadinessProbe(client *http.Client, upstreamURL string) fiber.Handler {
	if client == nil {
		client = http.DefaultClient
	}
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL+"/health/ready", nil)
		if err == nil {
			var resp *http.Response
			resp, err = client.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return c.JSON(fiber.Map{"status": "ready"})
				}
			}
		}

		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "not ready",
			"upstream": upstreamURL,
		})
	}
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
