package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("STORAGE_BACKEND", "minio")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("WA_GATEWAY_URL", "http://bridge:3000")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("STORAGE_BACKEND")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("WA_GATEWAY_URL")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "http://bridge:3000", cfg.Messaging.GatewayURL)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("STORAGE_BACKEND")
	os.Unsetenv("UPLOAD_DIR")
	os.Unsetenv("WA_ADDRESS_SUFFIX")
	os.Unsetenv("PORT")

	cfg := Load()

	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "uploads", cfg.Storage.LocalDir)
	assert.Equal(t, "@c.us", cfg.Messaging.AddressSuffix)
	assert.Equal(t, "5000", cfg.Port)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 7, getEnvInt(key, 7))
}
