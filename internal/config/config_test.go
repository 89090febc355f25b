package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TASKBOARD_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5001", cfg.Address())
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "http://localhost:5001/api", cfg.Client.APIURL)
	assert.Equal(t, 50, cfg.Buffer.BatchSize)
	assert.NotEmpty(t, cfg.Client.StatePath)
	assert.Error(t, cfg.ValidateServer(), "a secret is mandatory for the server")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SYNC_INTERVAL_SECONDS", "45")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 45*time.Second, cfg.Buffer.SyncInterval)
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.False(t, cfg.Migrations.Enabled)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_RejectsBadAPIURL(t *testing.T) {
	t.Setenv("TASKBOARD_API_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{Environment: "production", JWT: JWTConfig{Secret: "short"}}
	assert.Error(t, cfg.ValidateServer())

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.ValidateServer())

	cfg = &Config{Environment: "development", JWT: JWTConfig{Secret: "short"}}
	assert.NoError(t, cfg.ValidateServer())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", Name: "tb", User: "u", Password: "p@ss", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/tb?sslmode=disable", d.DSN())

	d.URL = "postgres://explicit"
	assert.Equal(t, "postgres://explicit", d.DSN())
}
