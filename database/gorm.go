package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBConnection represents a database connection
type DBConnection struct {
	DB     *gorm.DB
	Name   string
	Driver string
	DbURL  string
	Models []interface{}
	log    *logger.Logger
}

// NewDBConnection creates a new database connection
func NewDBConnection(name, driver, dbURL string, log *logger.Logger) (*DBConnection, error) {
	if dbURL == "" {
		return nil, errors.New("database URL cannot be empty")
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dbURL)
	case DriverSQLite:
		dialector = sqlite.Open(dbURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// Configure GORM logger
	newLogger := gormlogger.New(
		log,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   newLogger,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", name, err)
	}

	// Get and configure the underlying SQL DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for %s: %w", name, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("Connected to database", "name", name, "driver", driver)

	return &DBConnection{
		DB:     db,
		Name:   name,
		Driver: driver,
		DbURL:  dbURL,
		Models: []interface{}{
			&models.Clinic{},
			&models.User{},
			&models.Thought{},
			&models.ThoughtHistory{},
		},
		log: log.With("database", name),
	}, nil
}

// Close releases the underlying connection pool
func (c *DBConnection) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
