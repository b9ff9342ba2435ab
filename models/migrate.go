package models

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Blog{},
		&Comment{},
		&Like{},
		&Notification{},
	}
}

// Migrate creates or updates the tables, indexes and foreign keys of every model.
func Migrate(db *gorm.DB) error {
	logger := log.With().Str("component", "migrate").Logger()

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	logger.Info().Int("models", len(All())).Msg("Starting database migration")
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info().Msg("Database migration completed successfully")
	return nil
}
