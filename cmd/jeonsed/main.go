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

	"github.com/gin-gonic/gin"

	"jeonse-ledger-backend/config"
	"jeonse-ledger-backend/internal/api"
	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/db"
	"jeonse-ledger-backend/internal/listing"
	"jeonse-ledger-backend/internal/logger"
	"jeonse-ledger-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.SetLevel(cfg.Log.Level)
	logger.Infof("configuration loaded successfully from %s", configPath)

	if cfg.Auth.Secret == "" {
		logger.Fatalf("auth.secret must be configured. Set JWT_SECRET or add it to your config file.")
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}

	appStore := store.NewGormStore(gormDB)
	accounts := auth.NewService(appStore, auth.NewHasher(cfg.Auth.BcryptCost), auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL))
	listings := listing.NewService(appStore)

	// Initialize router
	router := api.NewRouter(&cfg.Server, accounts, listings)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Infof("shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutS)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Infof("server gracefully stopped")
}
