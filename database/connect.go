package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Options struct {
	// DSN of the primary. Writes and transactions always go here.
	DSN string
	// ReplicaDSN is optional; reads outside transactions are sent to it when set.
	ReplicaDSN    string
	SlowThreshold time.Duration
	MaxOpenConns  int
	MaxIdleConns  int
}

// SupabaseDSN builds a DSN from the SUPABASE_DB_* settings.
func SupabaseDSN(host, user, password, name, port string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		host, user, password, name, port)
}

// Open connects to Postgres, registers the replica if any and checks the connection.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = 2 * time.Second
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         NewGormLogger(log.Logger, opts.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.ReplicaDSN != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  opts.ReplicaDSN,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		})
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Msg("Read replica registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Msgf(format, args...)
}

// NewGormLogger reports slow queries and errors through zerolog.
func NewGormLogger(l zerolog.Logger, slowThreshold time.Duration) logger.Interface {
	return logger.New(
		gormWriter{logger: l.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
