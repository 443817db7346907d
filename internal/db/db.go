package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-inventory-backend/config"
	"rental-inventory-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate plus the index DDL that GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Device{},
		&model.Reservation{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	ddls := []string{
		// Window ingestion filters on (overlaps window) OR (status <> returned).
		"CREATE INDEX IF NOT EXISTS reservations_window " +
			"ON reservations (category, pickup_date, return_date);",
		// Still-open reservations are a small, hot subset.
		"CREATE INDEX IF NOT EXISTS reservations_open " +
			"ON reservations (status) WHERE status <> 'returned';",
		// Conflict seeding only looks at reservations that carry a tag.
		"CREATE INDEX IF NOT EXISTS reservations_assigned_tag " +
			"ON reservations (assigned_tag) WHERE assigned_tag IS NOT NULL;",
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
