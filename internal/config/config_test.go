package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, "/images/products", cfg.UploadURLPrefix)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.CSRFProtection)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg := Load()
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestValidate_Missing(t *testing.T) {
	err := Config{DBDriver: "postgres"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate_UnknownDriver(t *testing.T) {
	err := Config{DBDriver: "mysql", DatabaseURL: "x", SessionSecret: []byte("x")}.Validate()
	require.Error(t, err)
}

func TestEnvHelpers_BadValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "-1s")
	t.Setenv("X_BOOL", "maybe")

	assert.Equal(t, 7, EnvIntDefault("X_INT", 7))
	assert.Equal(t, time.Second, EnvDurationDefault("X_DUR", time.Second))
	assert.True(t, EnvBoolDefault("X_BOOL", true))
}
