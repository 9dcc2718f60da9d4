package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir, which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alyarmouk-inventory", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.InDelta(t, 0.14, cfg.Tax.VATRate, 1e-9)
	assert.InDelta(t, 0.01, cfg.Tax.ManufacturingTaxRate, 1e-9)
	assert.Equal(t, 5, cfg.Numbering.MaxAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.Notification.DueHorizon)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[app]
env = "staging"

[database]
driver = "sqlite"
path = "test.db"

[tax]
vat_rate = 0.10

[notification]
due_horizon = "48h"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.InDelta(t, 0.10, cfg.Tax.VATRate, 1e-9)
	assert.Equal(t, 48*time.Hour, cfg.Notification.DueHorizon)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AIM_DATABASE_DBNAME", "alyarmouk_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "alyarmouk_test", cfg.Database.DBName)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("accepts defaults", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		cfg := base()
		cfg.Tax.VATRate = -0.14
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 100
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects sqlite", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Driver = "sqlite"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres url escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "p@ss/word",
			DBName:   "alyarmouk",
			SSLMode:  "disable",
		}
		dsn := d.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "p%40ss%2Fword")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", Path: "alyarmouk.db"}
		assert.Equal(t, "alyarmouk.db", d.DSN())
	})
}
