package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSecretsDir = "/run/secrets"
	defaultJWTSecret  = "dev-secret-change-me"
	defaultJWTTTL     = 24 * time.Hour
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Object storage for recipe images and avatars
	S3BucketName    string
	AWSRegion       string
	S3Endpoint      string
	S3PublicBaseURL string

	CORSAllowedOrigins []string
}

// DSN returns the PostgreSQL connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Env: env}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := applyCommon(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads everything from environment variables; CI has no secrets mount.
func loadCIConfig(cfg *Config) {
	cfg.ServerPort = envOr("SERVER_PORT", "8080")
	cfg.ServerHost = envOr("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = envOr("DB_HOST", "localhost")
	cfg.DBPort = envOr("DB_PORT", "5432")
	cfg.DBUser = envOr("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = envOr("DB_NAME", "recipeshare")
	cfg.DBSSLMode = envOr("DB_SSL_MODE", "disable")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
}

// loadDevConfig prefers environment variables, then Docker secrets, then local defaults
func loadDevConfig(cfg *Config) {
	cfg.ServerPort = lookup("SERVER_PORT", "server_port", "8080")
	cfg.ServerHost = lookup("SERVER_HOST", "server_host", "localhost")
	cfg.DBHost = lookup("DB_HOST", "db_host", "localhost")
	cfg.DBPort = lookup("DB_PORT", "db_port", "5432")
	cfg.DBUser = lookup("DB_USER", "db_user", "postgres")
	cfg.DBPassword = lookup("DB_PASSWORD", "db_password", "postgres")
	cfg.DBName = lookup("DB_NAME", "db_name", "recipeshare")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.RedisURL = lookup("REDIS_URL", "redis_url", "")
	cfg.RedisHost = lookup("REDIS_HOST", "redis_host", "localhost")
	cfg.RedisPort = lookup("REDIS_PORT", "redis_port", "6379")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "redis_password", "")
	cfg.JWTSecret = lookup("JWT_SECRET", "jwt_secret", defaultJWTSecret)
}

// loadProdConfig reads credentials ONLY from Docker secrets
func loadProdConfig(cfg *Config) {
	cfg.ServerPort = lookup("SERVER_PORT", "server_port", "8080")
	cfg.ServerHost = lookup("SERVER_HOST", "server_host", "0.0.0.0")
	cfg.DBHost = lookup("DB_HOST", "db_host", "")
	cfg.DBPort = lookup("DB_PORT", "db_port", "5432")
	cfg.DBName = lookup("DB_NAME", "db_name", "")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode", "require")
	cfg.RedisURL = lookup("REDIS_URL", "redis_url", "")
	cfg.RedisHost = lookup("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = lookup("REDIS_PORT", "redis_port", "6379")

	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.JWTSecret = readSecret("jwt_secret")
}

// applyCommon fills the settings that are read the same way in every environment.
func applyCommon(cfg *Config) error {
	cfg.MigrationsDir = envOr("MIGRATIONS_DIR", "migrations")
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = envOr("AWS_REGION", "us-east-1")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")

	cfg.CORSAllowedOrigins = splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	cfg.JWTTTL = defaultJWTTTL
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", raw, err)
		}
		cfg.JWTTTL = ttl
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		cfg.RedisDB = n
	}
	return nil
}

// lookup returns the environment variable, falling back to the Docker secret and then def.
func lookup(envName, secretName, def string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return def
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
