package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Filter   FilterConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	PINHash        string // bcrypt hash of the parent PIN
	JWTSecret      string
	TokenTTL       time.Duration
	MaxPINAttempts int
	LockoutPeriod  time.Duration
}

type FilterConfig struct {
	SnapshotTTL time.Duration // how long active-rule snapshots live in redis
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxAttempts, err := getEnvInt("AUTH_MAX_PIN_ATTEMPTS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_MAX_PIN_ATTEMPTS: %w", err)
	}

	tokenTTL, err := getEnvDuration("AUTH_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}

	lockout, err := getEnvDuration("AUTH_PIN_LOCKOUT", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_PIN_LOCKOUT: %w", err)
	}

	snapshotTTL, err := getEnvDuration("FILTER_SNAPSHOT_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid FILTER_SNAPSHOT_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			PINHash:        getEnv("AUTH_PIN_HASH", ""),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			TokenTTL:       tokenTTL,
			MaxPINAttempts: maxAttempts,
			LockoutPeriod:  lockout,
		},
		Filter: FilterConfig{
			SnapshotTTL: snapshotTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.PINHash == "" {
		missing = append(missing, "AUTH_PIN_HASH")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
