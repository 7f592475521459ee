// ====================================
// File: cmd/curved/main.go
// ====================================
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/config"
	"github.com/rovshanmuradov/edition-mint/internal/engine"
	"github.com/rovshanmuradov/edition-mint/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := "configs/config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     "curved.log",
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()
	log.Info("Starting curve engine")

	runner := engine.NewRunner(cfg, log.Logger)
	if err := runner.Initialize(ctx); err != nil {
		log.LogError("Failed to initialize engine", err)
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		log.LogError("Engine execution error", err)
		os.Exit(1)
	}
}
