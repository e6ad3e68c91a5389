package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archiviz/internal/common/config"
	"archiviz/internal/common/logger"
	"archiviz/internal/common/middleware"
	"archiviz/internal/room/handlers"
	"archiviz/internal/room/repository"
	"archiviz/internal/room/service"
	"archiviz/internal/suggest"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	flag "github.com/spf13/pflag"
)

// ============================================================
// Configurator Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flag.StringVar(&cfg.DesignsDBPath, "db", cfg.DesignsDBPath, "path to the designs sqlite database")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.ReclampOnResize, "reclamp", cfg.ReclampOnResize, "clamp items back onto walls when the room shrinks")
	flag.Parse()

	log := logger.Init(cfg.LogLevel, cfg.LogJSON || cfg.IsProduction())

	db, err := repository.OpenSQLite(cfg.DesignsDBPath)
	if err != nil {
		log.Error("open db", "path", cfg.DesignsDBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Error("init db", "error", err)
		os.Exit(1)
	}

	store := service.NewStore(newSuggester(cfg, log), repo, log, service.Options{
		ReclampOnResize: cfg.ReclampOnResize,
	})
	roomHandler := handlers.NewRoomHandler(store, log)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.SuggestRPS,
		BurstSize:         cfg.SuggestBurst,
	})
	done := make(chan struct{})
	go limiter.Run(done)

	app := fiber.New(fiber.Config{
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
		// WriteTimeout не задаётся: /events держит соединение открытым.
		AppName: "ArchiViz Configurator",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	roomHandler.Register(app, repo, limiter.Handler())

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		close(done)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting configurator", "addr", addr, "env", cfg.Environment, "db", cfg.DesignsDBPath)

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

// newSuggester выбирает Gemini при наличии ключа, иначе офлайн-палитры.
func newSuggester(cfg *config.Config, log *slog.Logger) suggest.Suggester {
	if cfg.GeminiAPIKey == "" {
		log.Info("GEMINI_API_KEY not set, using offline palettes")
		return suggest.NewPalette()
	}
	log.Info("using gemini suggester", "model", cfg.GeminiModel)
	return suggest.NewGemini(&http.Client{}, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
}
