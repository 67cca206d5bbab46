package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar_kit/internal/models"
)

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.Server.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())

	cfg.DB.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
bike:
  tick_interval: 250ms
  initial_battery: 50
ride:
  min_duration_to_save: 2m
weather:
  api_key: from-file
calories:
  met_low: 5
`), 0o600))

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("WEATHER_API_KEY", "from-env")
	t.Setenv("SIMULATE_GPS", "true")
	t.Setenv("CORS_ORIGINS", "http://phone.local, ,http://laptop.local")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.Bike.TickInterval)
	assert.Equal(t, 50.0, cfg.Bike.InitialBattery)
	assert.Equal(t, 2*time.Minute, cfg.Ride.MinDurationToSave)
	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.True(t, cfg.Ride.Simulate)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5.0, cfg.Calories.MetLow)
	assert.Equal(t, 6.8, cfg.Calories.MetModerate)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"http://phone.local", "http://laptop.local"}, cfg.Server.CORSOrigins)
}

func TestLoad_BadSimulateFlag(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("SIMULATE_GPS", "maybe")
	_, err := Load("")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn, err := PostgresDSN(DBConfig{URL: "postgres://bob:pw@db.local:5433/rides?sslmode=require"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=db.local")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=rides")
	assert.Contains(t, dsn, "sslmode=require")

	_, err = PostgresDSN(DBConfig{URL: "mysql://nope"})
	assert.Error(t, err)

	dsn, err = PostgresDSN(Default().DB)
	require.NoError(t, err)
	assert.Contains(t, dsn, "dbname=rar_kit")
}

func TestDialector_Unknown(t *testing.T) {
	_, err := Dialector(DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDB_SQLite(t *testing.T) {
	db, err := InitDB(DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	assert.Same(t, db, GetDB())
	assert.True(t, db.Migrator().HasTable(&models.Rider{}))
	assert.True(t, db.Migrator().HasTable(&models.KVEntry{}))
}
