package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/clinic-thoughts/api/v1"
	"github.com/clinic-thoughts/config"
	"github.com/clinic-thoughts/database"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/middleware"
	"github.com/clinic-thoughts/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, appLog); err != nil {
		appLog.Error("Server stopped", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

// run serves the API until the listener fails; the store is closed on return
func run(cfg config.Config, appLog *logger.Logger) error {
	store, closeStore, err := openStorage(cfg, appLog)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer closeStore()

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(appLog))

	// CORS configuration
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	v1.NewHandler(store, cfg.JWTSecret, appLog).RegisterRoutes(router.Group("/api/v1"))

	appLog.Info("Clinic thoughts API starting", "port", cfg.Port, "backend", cfg.StorageBackend)
	if err := router.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// openStorage builds the configured backend and returns its cleanup func
func openStorage(cfg config.Config, log *logger.Logger) (storage.Storage, func(), error) {
	var driver, dsn string
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage; data is lost on restart")
		return storage.NewMemStorage(log), func() {}, nil
	case config.BackendPostgres:
		driver, dsn = database.DriverPostgres, cfg.DatabaseURL
	case config.BackendSQLite:
		driver, dsn = database.DriverSQLite, cfg.SQLitePath
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	conn, err := database.NewDBConnection("primary", driver, dsn, log)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Migrate(); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := conn.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	return storage.NewDatabaseStorage(conn.DB, log), closeFn, nil
}
