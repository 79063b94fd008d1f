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
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wordsanctuary/training-portal/internal/config"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/central"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/metrics"
	s3infra "github.com/wordsanctuary/training-portal/internal/infrastructure/s3"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/training"
	transporthttp "github.com/wordsanctuary/training-portal/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	hc := &http.Client{Timeout: cfg.HTTPTimeout}

	deps := &transporthttp.Deps{
		Central:  central.NewClient(cfg.CentralAPIURL, cfg.ProfileLookupPath, hc, m),
		Training: training.NewClient(cfg.TrainingAPIURL, hc, m),
		Observer: m,
		Gatherer: reg,
	}

	// S3 offload for uploaded profile pictures (optional).
	if cfg.AttachmentBucket != "" {
		client, err := s3infra.NewClient(context.Background(), cfg)
		if err != nil {
			logger.Error("s3 client", "error", err)
			os.Exit(1)
		}
		deps.Attachments = s3infra.NewStore(client, cfg.AttachmentBucket, cfg.AttachmentPublicURL)
	}

	router := transporthttp.NewRouter(cfg, deps, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
