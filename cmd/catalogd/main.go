package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/retailstack/catalog/internal/config"
	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/internal/events"
	"github.com/retailstack/catalog/internal/hierarchy"
	"github.com/retailstack/catalog/internal/httpapi"
	"github.com/retailstack/catalog/internal/repo"
	"github.com/retailstack/catalog/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	log.Info("Catalog service starting")

	// Connect to database
	log.Info("Connecting to database", zap.String("driver", cfg.DBDriver))
	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations and seed the classification tree
	log.Info("Running database migrations")
	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := db.SeedHierarchy(database); err != nil {
		log.Fatal("Failed to seed hierarchy", zap.Error(err))
	}

	// Load the hierarchy snapshot once; it is read-only for the session
	hier, err := hierarchy.Load(context.Background(), database, log)
	if err != nil {
		log.Fatal("Failed to load hierarchy", zap.Error(err))
	}

	// Initialize repository
	productRepo := repo.NewProductRepository(database, log)

	// Connect to RabbitMQ when configured; events are optional
	var publisher *events.Publisher
	if cfg.RabbitMQURL != "" {
		log.Info("Connecting to RabbitMQ")
		publisher, err = events.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		log.Info("RABBITMQ_URL not set, event publishing disabled")
	}

	// Start HTTP server
	server := httpapi.NewServer(productRepo, hier, publisher, database, log)
	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := server.Start(cfg.HTTPPort); err != nil {
			log.Info("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
