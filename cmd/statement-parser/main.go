package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"statement-parser/internal/api"
	"statement-parser/internal/api/handlers"
	"statement-parser/internal/service"
	"statement-parser/pkg/config"
	"statement-parser/pkg/logger"
	"statement-parser/pkg/metrics"

	"go.uber.org/zap"
)

// @title Statement Parser API
// @version 1.0
// @description Extracts key fields from PDF credit card statements

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting statement parser",
		zap.String("pdf_backend", cfg.PDF.Backend),
		zap.Duration("extract_timeout", cfg.PDF.ExtractTimeout),
		zap.Int("max_upload_mb", cfg.Server.MaxUploadMB),
		zap.Bool("card_last4_strict", cfg.Extract.CardLast4Strict),
	)

	// Initialize services
	backend, err := service.NewTextExtractor(cfg.PDF.Backend, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize PDF backend", zap.Error(err))
	}
	textService := service.NewTextService(backend, cfg.PDF.ExtractTimeout, appLogger)
	extractor := service.NewFieldExtractor(cfg.Extract.CardLast4Strict)
	m := metrics.New()
	statementService := service.NewStatementService(textService, extractor, m, cfg.Extract.PreviewChars, appLogger)

	// Initialize handlers
	statementHandler := handlers.NewStatementHandler(statementService, appLogger)

	// Setup router
	app := api.SetupRouter(statementHandler, m, &cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
