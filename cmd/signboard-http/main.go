package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/signboard-mcp/internal/api"
	"github.com/ironsheep/signboard-mcp/internal/app"
	"github.com/ironsheep/signboard-mcp/internal/config"
	"github.com/ironsheep/signboard-mcp/internal/logging"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("signboard-http %s\n", Version)
			return
		}
	}

	// A missing .env is normal
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	handlers := api.NewHandlers(a.Pipeline, a.OCRInfo, cfg.Server.MaxUploadBytes)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handlers, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("version", Version).
			Str("translation", cfg.Translation.Provider).
			Str("speech", cfg.Speech.Provider).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
