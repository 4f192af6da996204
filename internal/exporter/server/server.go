// Package server собирает fiber приложение сервиса экспорта.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"cad-exporter/internal/common/config"
	"cad-exporter/internal/common/middleware"
	"cad-exporter/internal/exporter/handlers"
)

// AppName передаётся в fiber.Config.
const AppName = "CAD Export Service"

// New возвращает приложение со всеми маршрутами.
func New(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      AppName,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(log))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.OpenAPISpec)

	// ============================================================
	// Export Routes
	// ============================================================

	handlers.NewExporter(cfg.Export, log).Register(app)

	return app
}

// Run слушает порт из конфига до отмены ctx, затем останавливает сервер.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app := New(cfg, log)
	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting export service",
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Environment))
		errCh <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down export service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
