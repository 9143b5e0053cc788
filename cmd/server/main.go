// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kivoa/catalog-backend/internal/config"
	"github.com/kivoa/catalog-backend/internal/database"
	"github.com/kivoa/catalog-backend/internal/queue"
	"github.com/kivoa/catalog-backend/internal/router"
	"github.com/kivoa/catalog-backend/internal/services"
	"github.com/kivoa/catalog-backend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Queues: SQS when configured, in-memory otherwise (single-process dev)
	enrichmentQueue := buildQueue(cfg, cfg.Worker.EnrichmentQueueURL)
	catalogSyncQueue := buildQueue(cfg, cfg.Worker.CatalogSyncQueueURL)

	// Shared services
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	catalog := services.NewShopifyService(cfg.Shopify)

	generator, err := services.NewGeminiService(context.Background(), cfg.Gemini)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize Gemini client")
	}

	// Worker loops
	enrichmentWorker := worker.NewEnrichmentWorker(
		db, enrichmentQueue, storage, generator,
		cfg.Worker.EnhancedImagesCount, cfg.Worker.MaxImageDimension,
	)
	catalogSyncWorker := worker.NewCatalogSyncWorker(db, catalogSyncQueue, catalog)

	supervisor := worker.NewSupervisor(
		time.Duration(cfg.Worker.ReceiveWaitSeconds)*time.Second,
		enrichmentWorker,
		catalogSyncWorker,
	)
	supervisor.Start()

	// Initialize router
	r := router.Initialize(db, cfg, router.Dependencies{
		EnrichmentQueue:  enrichmentQueue,
		CatalogSyncQueue: catalogSyncQueue,
		Storage:          storage,
		Catalog:          catalog,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	supervisor.Stop()
	supervisor.Join()

	logrus.Info("Server exited")
}

func buildQueue(cfg *config.Config, queueURL string) queue.Queue {
	if queueURL == "" {
		logrus.Warn("Queue URL not configured, using in-memory queue")
		return queue.NewMemoryQueue(30 * time.Second)
	}

	q, err := queue.NewSQSQueue(cfg.AWS, queueURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize SQS queue")
	}
	return q
}
