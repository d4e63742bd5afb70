package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	// Driver is one of memory, redis or postgres.
	Driver       string
	SnapshotPath string
	Redis        RedisConfig
	Postgres     PostgresConfig
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ClientConfig struct {
	CookieName    string
	SessionSecret string
	IdleTTL       time.Duration
	RememberMeTTL time.Duration
}

type ObservabilityConfig struct {
	MetricsAddr  string
	PprofAddr    string
	OtelEndpoint string
}

type Config struct {
	AppEnv          string
	LogLevel        string
	ServerPort      string
	DebugRoleSwitch bool
	Backend         BackendConfig
	Client          ClientConfig
	Storage         StorageConfig
	Observability   ObservabilityConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:     getEnvOrDefault("APP_ENV", EnvProduction),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
		Backend: BackendConfig{
			BaseURL: getEnvOrDefault("BACKEND_URL", "http://localhost:8000/api/"),
			Timeout: getDurationOrDefault("BACKEND_TIMEOUT", 10*time.Second),
		},
		Client: ClientConfig{
			CookieName:    getEnvOrDefault("CLIENT_COOKIE_NAME", "rms_client"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			IdleTTL:       getDurationOrDefault("CLIENT_IDLE_TTL", 30*time.Minute),
			RememberMeTTL: getDurationOrDefault("REMEMBER_ME_TTL", 30*24*time.Hour),
		},
		Storage: StorageConfig{
			Driver:       getEnvOrDefault("STORAGE_DRIVER", "memory"),
			SnapshotPath: getEnvOrDefault("STORAGE_SNAPSHOT_PATH", "rms-storage.gob"),
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       getIntOrDefault("REDIS_DB", 0),
			},
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "rms_templui"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: os.Getenv("POSTGRES_PASSWORD"),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 10,
				MinConns: 2,
			},
		},
		Observability: ObservabilityConfig{
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
			OtelEndpoint: getEnvOrDefault("OTEL_ENDPOINT", "otel-collector:4318"),
		},
	}
	cfg.DebugRoleSwitch = cfg.IsDevelopment() && getBoolOrDefault("DEBUG_ROLE_SWITCH", false)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the build runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) validate() error {
	if c.Client.SessionSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("SESSION_SECRET environment variable is required")
		}
		c.Client.SessionSecret = "development-only-session-secret-32b"
	}
	switch c.Storage.Driver {
	case "memory", "redis":
	case "postgres":
		if c.Storage.Postgres.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
