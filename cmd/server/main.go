package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/api"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/logger"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/providers"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/services"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.WithField("service", cfg.ServiceName).Info("Starting dashboard API server")

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewStore(cfg.Storage, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize snapshot store")
	}

	cache := services.NewCacheService(cfg.Redis, log)
	defer cache.Close()

	provider := providers.NewESPNClient(cfg.ESPN, log)
	aiClient := services.NewOpenAIClient(cfg.OpenAI, log)

	router := api.SetupRouter(api.Dependencies{
		Store:    store,
		Cache:    cache,
		Provider: provider,
		AI:       aiClient,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Dashboard.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Dashboard.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received, draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
