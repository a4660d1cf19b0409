package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sk88studiosinc-maker/Soulsound/internal/api"
	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/config"
	"github.com/sk88studiosinc-maker/Soulsound/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error("runtime_init_failed", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	authSvc := auth.NewService(rt.Accounts, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err := authSvc.SeedArtist(cfg.SeedEmail, cfg.SeedPass); err != nil {
		logger.Error("seed_artist_failed", "error", err)
		os.Exit(1)
	}

	registry := app.NewRegistry(rt.Services.SessionFactory(), logger)
	defer registry.Close()

	srv := api.NewServer(api.Deps{
		Auth:     authSvc,
		Accounts: rt.Accounts,
		Sessions: registry,
		Hub:      rt.Hub,
		Keys:     rt.Keys,
		Speech:   rt.Speech,
		Media:    rt.Media,
		Logger:   logger,

		AllowedOrigins: cfg.AllowedOrigins,
	})

	// No WriteTimeout: the event stream stays open for the whole session.
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_start", "addr", cfg.Addr, "seed_artist", cfg.SeedEmail, "provider", cfg.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_exited", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server_draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_forced_shutdown", "error", err)
	}
	logger.Info("server_stopped")
}
