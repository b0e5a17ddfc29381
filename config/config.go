package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Public base URL of the web front end, used for share and
	// verification links.
	BaseURL string

	// Origins allowed to call the API from a browser.
	AllowedOrigins []string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// SMTP configuration (optional; emails are logged when unset)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secrets for each key, then validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    getSetting("SERVER_PORT", "server_port", "8080"),
		ServerHost:    getSetting("SERVER_HOST", "server_host", "0.0.0.0"),
		BaseURL:       getSetting("BASE_URL", "base_url", "http://localhost:5173"),
		DBHost:        getSetting("DB_HOST", "db_host", "localhost"),
		DBPort:        getSetting("DB_PORT", "db_port", "5432"),
		DBUser:        getSetting("DB_USER", "db_user", ""),
		DBPassword:    getSetting("DB_PASSWORD", "db_password", ""),
		DBName:        getSetting("DB_NAME", "db_name", "curateddiscoveries"),
		DBSSLMode:     getSetting("DB_SSL_MODE", "db_ssl_mode", "disable"),
		RedisHost:     getSetting("REDIS_HOST", "redis_host", "localhost"),
		RedisPort:     getSetting("REDIS_PORT", "redis_port", "6379"),
		RedisPassword: getSetting("REDIS_PASSWORD", "redis_password", ""),
		RedisURL:      getSetting("REDIS_URL", "redis_url", ""),
		JWTSecret:     getSetting("JWT_SECRET", "jwt_secret", ""),
		SMTPHost:      getSetting("SMTP_HOST", "smtp_host", ""),
		SMTPPort:      getSetting("SMTP_PORT", "smtp_port", ""),
		SMTPUsername:  getSetting("SMTP_USERNAME", "smtp_username", ""),
		SMTPPassword:  getSetting("SMTP_PASSWORD", "smtp_password", ""),
		EmailFrom:     getSetting("EMAIL_FROM", "email_from", ""),
		EmailFromName: getSetting("EMAIL_FROM_NAME", "email_from_name", "CuratedDiscoveries"),
	}

	origins := getSetting("ALLOWED_ORIGINS", "allowed_origins", "http://localhost:5173")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getSetting resolves one setting: environment variable first, Docker secret
// second, default last.
func getSetting(envName, secretName, def string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory.
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
