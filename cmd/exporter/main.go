package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cad-exporter/internal/common/config"
	"cad-exporter/internal/common/logger"
	"cad-exporter/internal/exporter/server"
)

// ============================================================
// Export Service
// ============================================================

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Init("info", "").Fatal("failed to load config", zap.Error(err))
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, log); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
