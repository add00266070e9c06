package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"hackit/internal/middleware"

	"gorm.io/gorm"
)

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

const ensureSchemaMigrationsSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	checksum VARCHAR(64) NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrator applies and rolls back SQL migrations, recording each in
// schema_migrations in the same transaction as its script.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	now        func() time.Time
}

// NewMigrator returns a migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	ms, err := Migrations()
	if err != nil {
		return nil, err
	}
	return NewMigratorWith(db, ms), nil
}

// NewMigratorWith returns a migrator over an explicit migration set.
func NewMigratorWith(db *gorm.DB, ms []Migration) *Migrator {
	return &Migrator{db: db, migrations: ms, now: time.Now}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).Exec(ensureSchemaMigrationsSQL).Error; err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

// Applied lists recorded migrations by version.
func (m *Migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	var rows []AppliedMigration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return rows, nil
}

// Pending lists migrations not yet applied. It fails when the database has
// drifted from the code: unknown versions or edited scripts.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.verify(applied); err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *Migrator) verify(applied []AppliedMigration) error {
	known := make(map[int]Migration, len(m.migrations))
	for _, mig := range m.migrations {
		known[mig.Version] = mig
	}

	var problems []string
	for _, a := range applied {
		mig, ok := known[a.Version]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%06d is applied but not present in code", a.Version))
		case a.Checksum != mig.Checksum:
			problems = append(problems, fmt.Sprintf("%s was edited after it was applied", mig))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("schema_migrations drift: %s (reset the development database to rebuild)", strings.Join(problems, "; "))
}

// Up applies every pending migration in version order and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&AppliedMigration{
				Version:   mig.Version,
				Name:      mig.Name,
				Checksum:  mig.Checksum,
				AppliedAt: m.now().UTC(),
			}).Error
		})
		if err != nil {
			return i, fmt.Errorf("apply migration %s: %w", mig, err)
		}
	}
	return len(pending), nil
}

// Down rolls back one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, a := range applied {
		if a.Version == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", target.Name))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.Down).Error; err != nil {
			return fmt.Errorf("rollback %s: %w", target, err)
		}
		return tx.Where("version = ?", version).Delete(&AppliedMigration{}).Error
	})
}
