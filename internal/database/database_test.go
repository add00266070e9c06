package database

import (
	"context"
	"testing"

	"hackit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectWithOptions_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: "file::memory:?cache=shared",
		DBReadHost:   "replica.internal",
	}

	db, err := ConnectWithOptions(cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	assert.Same(t, db, DB)
	assert.Nil(t, ReadDB, "sqlite never opens a replica")
	assert.Same(t, DB, GetReadDB())

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("posts"))
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", config.Config{Env: "development", DBSchemaMode: "hybrid"}, true, true, false},
		{"hybrid prod", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"auto prod refused", config.Config{Env: "production", DBSchemaMode: "auto"}, false, false, true},
		{"auto prod allowed", config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite always auto", config.Config{Env: "production", DBDriver: "sqlite", DBSchemaMode: "hybrid"}, false, true, false},
		{"sqlite sql refused", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, false, false, true},
		{"empty mode is hybrid", config.Config{Env: "development"}, true, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			plan, err := PlanSchema(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.SQL)
			assert.Equal(t, tt.wantAuto, plan.Auto)
		})
	}
}
