package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "a-long-enough-test-secret")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postpass")
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "curated")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, http://localhost:5173")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "curated", cfg.DBName)
	assert.Equal(t, "a-long-enough-test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "http://localhost:5173", cfg.BaseURL)
	assert.Equal(t, "curateddiscoveries", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "CuratedDiscoveries", cfg.EmailFromName)
}

func TestSecretsFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("secret-from-docker-secret\n"), 0o600))
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postpass")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "secret-from-docker-secret", cfg.JWTSecret)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:  "a-long-enough-test-secret",
			DBUser:     "postgres",
			DBPassword: "postpass",
			DBSSLMode:  "disable",
			BaseURL:    "https://app.example.com",
		}
	}

	assert.NoError(t, ValidateConfig(valid()))

	missing := valid()
	missing.JWTSecret = ""
	err := ValidateConfig(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	short := valid()
	short.JWTSecret = "too-short"
	assert.Error(t, ValidateConfig(short))

	badSSL := valid()
	badSSL.DBSSLMode = "maybe"
	assert.Error(t, ValidateConfig(badSSL))

	badURL := valid()
	badURL.BaseURL = "app.example.com"
	assert.Error(t, ValidateConfig(badURL))
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "postpass",
		DBName:     "curated",
		DBSSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postpass dbname=curated sslmode=disable",
		cfg.DSN())
}
