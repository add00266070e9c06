// Package database handles database connections and migrations.
package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackit/internal/config"
	"hackit/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// DB is the global database connection instance.
	DB *gorm.DB
	// ReadDB is the optional read replica; nil when reads go to the primary.
	ReadDB *gorm.DB
)

// Options tunes Connect for callers other than the API server.
type Options struct {
	// SkipReadReplica disables the read replica even when DB_READ_HOST is set.
	SkipReadReplica bool
	// LogLevel overrides the GORM log level (defaults to Warn).
	LogLevel logger.LogLevel
}

// Connect opens a database connection using the provided configuration and returns the gorm DB instance.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, Options{})
}

// ConnectWithOptions opens the primary connection (and the read replica, when configured)
// and installs them as the package globals.
func ConnectWithOptions(cfg *config.Config, opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	gormCfg := &gorm.Config{Logger: NewGormLogger(level)}

	dbInstance, err := gorm.Open(dialector(cfg, cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(dbInstance, cfg); err != nil {
		return nil, err
	}
	middleware.Logger.Info("Database connected successfully", slog.String("driver", driverName(cfg)))

	DB = dbInstance
	ReadDB = nil

	if !opts.SkipReadReplica && cfg.DBReadHost != "" && driverName(cfg) == "postgres" {
		readInstance, err := gorm.Open(dialector(cfg, cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword), gormCfg)
		if err != nil {
			middleware.Logger.Warn("Read replica unavailable, using primary for reads", slog.String("error", err.Error()))
		} else if err := configurePool(readInstance, cfg); err == nil {
			ReadDB = readInstance
			middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
		}
	}

	return DB, nil
}

func driverName(cfg *config.Config) string {
	if cfg.DBDriver == "" {
		return "postgres"
	}
	return cfg.DBDriver
}

func dialector(cfg *config.Config, host, port, user, password string) gorm.Dialector {
	if driverName(cfg) == "sqlite" {
		return sqlite.Open(cfg.DBSQLitePath)
	}

	return postgres.Open(postgresDSN(host, port, user, password, cfg.DBName, cfg.DBSSLMode))
}

// postgresDSN builds a key=value DSN. Values are single-quoted so passwords
// with spaces or quotes survive.
func postgresDSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	quote := func(v string) string {
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		quote(host), quote(port), quote(user), quote(password), quote(name), sslMode)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(orDefault(cfg.DBMaxOpenConns, 25))
	sqlDB.SetMaxIdleConns(orDefault(cfg.DBMaxIdleConns, 5))
	sqlDB.SetConnMaxLifetime(time.Duration(orDefault(cfg.DBConnMaxLifetimeMinutes, 5)) * time.Minute)
	return nil
}

// GetReadDB returns the read replica when one is connected, otherwise the primary.
func GetReadDB() *gorm.DB {
	if ReadDB != nil {
		return ReadDB
	}
	return DB
}

// Close closes the primary and replica connections.
func Close() error {
	var errs []error
	for _, db := range []*gorm.DB{ReadDB, DB} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	ReadDB = nil
	DB = nil
	return errors.Join(errs...)
}
