package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"novel-backend/internal/bootstrap"
	"novel-backend/internal/shared/config"
	"novel-backend/internal/shared/server"
	"novel-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	defer telemetry.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		telemetry.Error("api.config_invalid", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		telemetry.Info("api.listening", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("api.server_error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("api.shutdown_error", map[string]any{"error": err.Error()})
	}
	telemetry.Info("api.stopped", nil)
}
