package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/model"
)

// Init opens the database named by cfg.DSN and runs migrations. Postgres
// URLs and key=value DSNs use the postgres driver; anything else is treated
// as a sqlite file.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.Get(context.Background())

	level := gormlogger.Warn
	if cfg.LogSQL {
		level = gormlogger.Info
	}

	dialector, isPostgres := Dialector(cfg.DSN)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if isPostgres {
		if err := applyPostgresDDL(db); err != nil {
			log.Warnf("Failed to apply some postgres DDL: %v. Continuing without them.", err)
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// Dialector picks the gorm driver for dsn.
func Dialector(dsn string) (gorm.Dialector, bool) {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return postgres.Open(dsn), true
	}
	return sqlite.Open(dsn), false
}

// Migrate creates or updates the snapshot and subscription tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ActivityRow{},
		&model.PushSubscription{},
		&model.WatchedVehicle{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func applyPostgresDDL(db *gorm.DB) error {
	ddls := []string{
		// log view: newest first within a tab
		"CREATE INDEX IF NOT EXISTS idx_vehicle_activities_status_entry ON vehicle_activities (status, entry_time DESC);",
		"CREATE INDEX IF NOT EXISTS idx_vehicle_activities_vehicle_lower ON vehicle_activities (lower(vehicle_number));",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
