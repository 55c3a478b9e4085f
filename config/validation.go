package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found so they are reported together.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	required := map[string]string{
		"DB_HOST":     cfg.DBHost,
		"DB_NAME":     cfg.DBName,
		"DB_USER":     cfg.DBUser,
		"SERVER_PORT": cfg.ServerPort,
	}
	for _, field := range []string{"DB_HOST", "DB_NAME", "DB_USER", "SERVER_PORT"} {
		if required[field] == "" {
			add(field, "is required")
		}
	}

	for field, port := range map[string]string{"SERVER_PORT": cfg.ServerPort, "DB_PORT": cfg.DBPort} {
		if port == "" {
			continue
		}
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			add(field, fmt.Sprintf("invalid port %q", port))
		}
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}

	switch cfg.Env {
	case CI:
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required in CI environment")
		}
	case Production:
		if cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			add("jwt_secret", "must not use the development default")
		}
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			add("REDIS_HOST", "redis is required in production")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
