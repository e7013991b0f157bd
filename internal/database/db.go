package database

import (
	"fmt"

	"procurement/internal/model"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewConnection opens a gorm pool for the given driver. Migrations are run
// separately via Migrate.
func NewConnection(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}

	switch driver {
	case DriverPostgres, "":
		return gorm.Open(postgres.Open(dsn), cfg)
	case DriverSQLite:
		return NewSQLiteConnection(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewSQLiteConnection opens a single-connection sqlite database. SQLite has no
// row locks, so writers are funneled through one connection.
func NewSQLiteConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate auto-migrates the ledger schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Department{},
		&model.Budget{},
		&model.BudgetRequest{},
		&model.BudgetRevision{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	log.Info("database schema migrated")
	return nil
}
