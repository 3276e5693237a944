package database

import (
	"fmt"

	"github.com/clinic-thoughts/models"
	"gorm.io/gorm"
)

const migrateBatchSize = 200

// Migrate migrates the database schema
func (c *DBConnection) Migrate() error {
	c.log.Info("Migrating database schema...")
	if err := c.DB.AutoMigrate(c.Models...); err != nil {
		return fmt.Errorf("failed to migrate %s database: %w", c.Name, err)
	}
	c.log.Info("Database schema migrated")
	return nil
}

// MigrateDataBetweenDatabases copies every table from source to target
// inside one target transaction. Primary keys are preserved so history rows
// keep pointing at their thoughts.
func MigrateDataBetweenDatabases(source, target *DBConnection) error {
	target.log.Info("Starting data migration", "source", source.Name)

	return target.DB.Transaction(func(tx *gorm.DB) error {
		// Step 1: Clinics
		var clinics []models.Clinic
		if err := copyTable(source.DB, tx, &clinics, "clinics"); err != nil {
			return err
		}
		target.log.Info("Migrated clinics", "count", len(clinics))

		// Step 2: Users
		var users []models.User
		if err := copyTable(source.DB, tx, &users, "users"); err != nil {
			return err
		}
		target.log.Info("Migrated users", "count", len(users))

		// Step 3: Thoughts
		var thoughts []models.Thought
		if err := copyTable(source.DB, tx, &thoughts, "thoughts"); err != nil {
			return err
		}
		target.log.Info("Migrated thoughts", "count", len(thoughts))

		// Step 4: History. Sources that predate history tracking have none;
		// readers synthesize a created entry for those thoughts.
		var history []models.ThoughtHistory
		if err := copyTable(source.DB, tx, &history, "thought history"); err != nil {
			return err
		}
		target.log.Info("Migrated thought history", "count", len(history))

		if target.Driver == DriverPostgres {
			return resetSequences(tx)
		}
		return nil
	})
}

// resetSequences moves serial sequences past the copied ids
func resetSequences(tx *gorm.DB) error {
	for _, table := range []string{"clinics", "users", "thoughts", "thought_history"} {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
			table, table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func copyTable[T any](source, target *gorm.DB, rows *[]T, label string) error {
	if err := source.Order("id").Find(rows).Error; err != nil {
		return fmt.Errorf("failed to fetch %s: %w", label, err)
	}
	if len(*rows) == 0 {
		return nil
	}
	if err := target.CreateInBatches(rows, migrateBatchSize).Error; err != nil {
		return fmt.Errorf("failed to migrate %s: %w", label, err)
	}
	return nil
}
