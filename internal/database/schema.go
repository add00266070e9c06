package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hackit/internal/config"
	"hackit/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	// SchemaModeHybrid runs the SQL migrations everywhere and AutoMigrate
	// outside production-like environments. It is the default.
	SchemaModeHybrid = "hybrid"
	// SchemaModeSQL runs only the versioned SQL migrations.
	SchemaModeSQL = "sql"
	// SchemaModeAuto runs only GORM AutoMigrate.
	SchemaModeAuto = "auto"
)

// SchemaPlan is what ApplySchema will do for a given config.
type SchemaPlan struct {
	Mode string
	SQL  bool // run the embedded migrations
	Auto bool // run AutoMigrate over PersistentModels
}

// SchemaStatus is a SchemaPlan plus the migration state of the database.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
}

func prodLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// PlanSchema resolves DB_SCHEMA_MODE against the environment and driver.
// The embedded SQL is Postgres-only, so SQLite databases are always built
// from the models.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}

	if cfg.DBDriver == "sqlite" {
		if plan.Mode == SchemaModeSQL {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=sql is not supported with DB_DRIVER=sqlite")
		}
		plan.Auto = true
		return plan, nil
	}

	switch plan.Mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeAuto:
		if prodLike(cfg.Env) && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.Auto = true
	case SchemaModeHybrid:
		plan.SQL, plan.Auto = true, !prodLike(cfg.Env)
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the database up to date according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	log := middleware.Logger.With(slog.String("mode", plan.Mode), slog.String("env", cfg.Env))

	if plan.SQL {
		m, err := NewMigrator(db)
		if err != nil {
			return err
		}
		n, err := m.Up(ctx)
		if err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		log.InfoContext(ctx, "sql migrations up to date", slog.Int("applied", n))
	}

	if plan.Auto {
		if plan.Mode == SchemaModeAuto && prodLike(cfg.Env) {
			log.WarnContext(ctx, "running AutoMigrate in a production-like environment")
		}
		if err := autoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.InfoContext(ctx, "auto-migrate complete")
	}
	return nil
}

// GetSchemaStatus reports the plan for cfg and, when SQL migrations are part
// of it, which versions are applied and pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}
	if !plan.SQL {
		return status, nil
	}

	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range applied {
		status.AppliedVersions = append(status.AppliedVersions, a.Version)
	}
	if status.PendingMigrations, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
