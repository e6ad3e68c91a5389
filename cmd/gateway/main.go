package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"archiviz/internal/common/config"
	"archiviz/internal/common/logger"
	"archiviz/internal/common/middleware"
	"archiviz/internal/gateway/handlers"
	"archiviz/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	flag "github.com/spf13/pflag"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	openAPIPath := "docs/archiviz.openapi.yaml"
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flag.StringVar(&cfg.ConfiguratorURL, "upstream", cfg.ConfiguratorURL, "configurator service URL")
	flag.StringVar(&openAPIPath, "openapi", openAPIPath, "path to the OpenAPI document")
	flag.Parse()

	log := logger.Init(cfg.LogLevel, cfg.LogJSON || cfg.IsProduction())

	app := fiber.New(fiber.Config{
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
		AppName:     "ArchiViz Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	upstreamClient := &http.Client{}

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(upstreamClient, cfg.ConfiguratorURL))
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec(openAPIPath))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ArchiViz API v1",
			"status":  "ok",
		})
	})

	// Configurator Service
	// WriteTimeout ограничивает запросы к upstream, а не сервер: /events держит соединение открытым.
	configurator := proxy.New(cfg.ConfiguratorURL, "/api/v1", upstreamClient, log).
		WithTimeout(time.Duration(cfg.WriteTimeout) * time.Second)
	api.All("/*", configurator.Handler())

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting gateway", "addr", addr, "env", cfg.Environment, "upstream", cfg.ConfiguratorURL)

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
