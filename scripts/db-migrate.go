package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/clinic-thoughts/config"
	"github.com/clinic-thoughts/database"
	"github.com/clinic-thoughts/logger"
)

// Copies every clinic, user, thought and history row from one database into
// another, e.g. from a local SQLite file into Postgres.
func main() {
	config.LoadEnv()

	appLog, err := logger.New(config.GetEnv("LOG_MODE", "development"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLog.Info("Starting database migration...")
	if err := migrate(appLog); err != nil {
		appLog.Error("Data migration failed", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Info("Database migration completed successfully!")
	appLog.Sync()
}

func migrate(appLog *logger.Logger) error {
	sourceDriver := config.GetEnv("SOURCE_DATABASE_DRIVER", database.DriverPostgres)
	sourceDBURL := config.GetEnv("SOURCE_DATABASE_URL", "")
	targetDriver := config.GetEnv("TARGET_DATABASE_DRIVER", database.DriverPostgres)
	targetDBURL := config.GetEnv("TARGET_DATABASE_URL", "")
	if sourceDBURL == "" || targetDBURL == "" {
		return errors.New("SOURCE_DATABASE_URL and TARGET_DATABASE_URL must be set")
	}

	sourceDB, err := database.NewDBConnection("source", sourceDriver, sourceDBURL, appLog)
	if err != nil {
		return fmt.Errorf("connect to source database: %w", err)
	}
	defer sourceDB.Close()

	targetDB, err := database.NewDBConnection("target", targetDriver, targetDBURL, appLog)
	if err != nil {
		return fmt.Errorf("connect to target database: %w", err)
	}
	defer targetDB.Close()

	// Ensure target database schema is migrated
	if err := targetDB.Migrate(); err != nil {
		return fmt.Errorf("migrate target schema: %w", err)
	}

	return database.MigrateDataBetweenDatabases(sourceDB, targetDB)
}
