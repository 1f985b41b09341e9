package initializers

import (
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the Postgres pool. Prepared statements stay off because
// the Supabase pooler runs in transaction mode.
func ConnectDB(dsn string, debug bool) (*gorm.DB, error) {
	log.Info().Msg("Connecting to database")
	if dsn == "" {
		return nil, fmt.Errorf("env variable DIRECT_URL is empty")
	}

	pgConfig := postgres.Config{
		PreferSimpleProtocol: true,
		DriverName:           "postgres",
		DSN:                  dsn,
	}
	gormLogger := logger.Default.LogMode(logger.Warn)
	if debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		PrepareStmt:          false,
		DisableAutomaticPing: true,
		Logger:               gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting underlying *sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)

	log.Info().Msg("Database connection successful")
	return db, nil
}
