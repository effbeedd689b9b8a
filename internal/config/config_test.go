package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "GO_ENV", "STORAGE_BACKEND", "DB_DRIVER", "DB_CONNECTION_STRING", "NATS_URL", "STATS_CACHE_TTL", "MAX_UPLOAD_BYTES", "OTEL_ENABLED", "OTEL_TRACES_SAMPLER_ARG"} {
		unsetEnv(t, key)
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "relational", cfg.Database.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/notes-dev.db", cfg.Database.Connection)
	assert.Equal(t, 30*time.Second, cfg.App.StatsCacheTTL)
	assert.Equal(t, 10*1024*1024, cfg.App.MaxUploadBytes)
	assert.Empty(t, cfg.Events.NatsURL)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "development", cfg.Tracing.Environment)
}

func TestLoadProductionDatabasePath(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	unsetEnv(t, "DB_CONNECTION_STRING")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "data/notes.db", cfg.Database.Connection)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TTL_GO", "2m")
	t.Setenv("TTL_SECONDS", "15")
	t.Setenv("TTL_BAD", "soon")

	assert.Equal(t, 2*time.Minute, getEnvAsDuration("TTL_GO", time.Second))
	assert.Equal(t, 15*time.Second, getEnvAsDuration("TTL_SECONDS", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TTL_BAD", time.Second))
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("RATIO_OK", "0.25")
	t.Setenv("RATIO_BAD", "most")

	assert.Equal(t, 0.25, getEnvAsFloat("RATIO_OK", 1))
	assert.Equal(t, 1.0, getEnvAsFloat("RATIO_BAD", 1))
}
