package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/m-im-ha/turbo-blog-practice/api"
	"github.com/m-im-ha/turbo-blog-practice/auth"
	"github.com/m-im-ha/turbo-blog-practice/config"
	"github.com/m-im-ha/turbo-blog-practice/database"
	"github.com/m-im-ha/turbo-blog-practice/logging"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/services"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	c := config.New()
	logging.Setup(logging.Options{
		Level:  config.GetString(c, "LOG_LEVEL", "info"),
		Format: config.GetString(c, "LOG_FORMAT", "json"),
		File:   config.GetString(c, "LOG_FILE", ""),
	})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("Error loading .env file")
	}
	log.Info().Msg("Initializing app...")

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

func run(c map[string]string) error {
	ctx := context.Background()

	dsn, err := databaseDSN(c)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, database.Options{
		DSN:           dsn,
		ReplicaDSN:    config.GetString(c, "DATABASE_REPLICA_URL", ""),
		SlowThreshold: time.Duration(config.GetInt(c, "DB_SLOW_QUERY_MS", 2000)) * time.Millisecond,
		MaxOpenConns:  config.GetInt(c, "DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:  config.GetInt(c, "DB_MAX_IDLE_CONNS", 5),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		return models.GenerateModels(db, config.GetString(c, "GENERATE_OUT_PATH", "./generated"))
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		return models.ColumnMismatchReport(db)
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			return err
		}
	}

	secret, err := jwtSecret(ctx, c)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenManager(secret, time.Duration(config.GetInt(c, "TOKEN_TTL_HOURS", 24))*time.Hour)

	store := database.New(db)
	queue := services.NewTagQueue(services.NewTagAttacher(store))
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("start tag queue: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Error closing tag queue")
		}
	}()

	server, err := api.NewServer(c, api.Dependencies{
		Store:  store,
		Tokens: tokens,
		Tags:   queue,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(time.Duration(config.GetInt(c, "SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second)
	return exitError(fatalErr)
}

var errInterrupted = errors.New("interrupted")

// exitError drops the errors of a normal shutdown so that only a failing server exits non-zero.
func exitError(err error) error {
	if errors.Is(err, errInterrupted) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// databaseDSN picks the connection string for DB_TYPE.
func databaseDSN(c map[string]string) (string, error) {
	dbType := config.GetString(c, "DB_TYPE", "postgres")
	log.Info().Str("dbType", dbType).Msg("Selecting database")

	switch dbType {
	case "supa":
		log.Info().Msg("Connecting to Supabase database...")
		return database.SupabaseDSN(
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		), nil
	case "postgres":
		dsn := config.GetString(c, "DATABASE_URL", "")
		if dsn == "" {
			return "", fmt.Errorf("DATABASE_URL is not set")
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// jwtSecret reads the signing secret, from SSM when JWT_SECRET_SSM_PARAMETER is set.
func jwtSecret(ctx context.Context, c map[string]string) (string, error) {
	var params config.ParameterGetter
	if config.GetString(c, "JWT_SECRET_SSM_PARAMETER", "") != "" {
		client, err := config.NewSSMClient(ctx)
		if err != nil {
			return "", err
		}
		params = client
	}
	return config.ResolveSecret(ctx, c, params, "JWT_SECRET", "JWT_SECRET_SSM_PARAMETER", "NEXTAUTH_SECRET")
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%w: %s", errInterrupted, <-c)
}
