package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/health-tracker/backend/internal/router"
	"github.com/anonto42/health-tracker/backend/pkg/config"
	"github.com/anonto42/health-tracker/backend/pkg/firebase"
	"github.com/anonto42/health-tracker/backend/pkg/logger"
	"github.com/anonto42/health-tracker/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initialize databases: %w", err)
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firebase is optional: without credentials push delivery stays disabled.
	var fcm *messaging.Client
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			slog.Warn("firebase unavailable, push notifications disabled", "error", err)
		} else {
			fcm = app.MessagingClient
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg)

	service, err := router.SetupRoutes(ctx, e, cfg, db, fcm)
	if err != nil {
		return fmt.Errorf("setup routes: %w", err)
	}

	service.Start(ctx)
	defer service.Stop()
	armed := service.InitializeAll(ctx)
	slog.Info("reminder scheduler started", "armed", armed)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
