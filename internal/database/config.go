package database

import (
	"fmt"
	"time"

	"leadcaller/internal/config"
	"leadcaller/internal/logging"
	"leadcaller/internal/store"
	"leadcaller/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	maxRetries = 5
	retryDelay = time.Second * 5
)

// InitDB opens the postgres connection, tunes the pool and migrates the schema
func InitDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	baseLogger := logger.New(
		logging.GormWriter{Log: log},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// The trigger polls every minute; keep it out of the SQL log.
	customLogger := utils.NewCustomGormLogger(baseLogger, store.DueMeetingsQueryPattern)

	gormConfig := &gorm.Config{
		Logger: customLogger,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		PrepareStmt:    true,
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database connection attempt failed")
		if i < maxRetries-1 {
			log.Info().Dur("delay", retryDelay).Msg("retrying database connection")
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Msg("database connection established and migrations completed")
	return db, nil
}

// OpenStore returns the Store selected by STORE_DRIVER and a function that
// releases it.
func OpenStore(cfg *config.Config, log zerolog.Logger) (store.Store, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		return store.NewMemory(), func() error { return nil }, nil
	}

	db, err := InitDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return store.NewGorm(db), sqlDB.Close, nil
}

func gormLevel(level zerolog.Level) logger.LogLevel {
	switch {
	case level <= zerolog.DebugLevel:
		return logger.Info
	case level <= zerolog.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
