package database

import (
	"log"
	"strings"

	"obrafin/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens PostgreSQL for postgres:// DSNs and SQLite for anything
// else (file path, "file:" URI or "sqlite://" prefix), then migrates the schema.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := Open(dsn, logger.Warn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Open connects without migrating.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite database:", dsn)
	return gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), cfg)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Obra{},
		&model.Material{},
		&model.Labor{},
		&model.Equipment{},
		&model.Contract{},
		&model.MiscExpense{},
		&model.Installment{},
		&model.Income{},
		&model.Ledger{},
		&model.LedgerExpense{},
		&model.LedgerContract{},
		&model.ScheduleStage{},
		&model.WeeklyPayment{},
		&model.AuditLog{},
	)
}
