package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage and sink backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendFile     = "file"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Comment/subscription store selection
	Store StoreConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration, shared by the redis store and the stream sink
	Redis RedisConfig

	// Webhook record sink
	Sink SinkConfig

	// Comment API settings
	Comments CommentsConfig

	// Webhook transformer settings
	Webhook WebhookConfig

	// Per-client request throttling
	RateLimit RateLimitConfig

	// Pass-through proxy routes
	Proxy ProxyConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// StoreConfig selects the key-value store backend
type StoreConfig struct {
	Backend        string // "postgres" or "redis"
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig holds redis connection and key layout settings
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	Stream       string
	StreamMaxLen int64 // 0 keeps every entry
}

// SinkConfig selects the append-only sink for webhook records
type SinkConfig struct {
	Backend    string // "redis" or "file"
	FileDir    string
	FilePrefix string
}

// CommentsConfig holds pagination settings
type CommentsConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// WebhookConfig holds webhook batch settings
type WebhookConfig struct {
	MaxRecordBytes int
}

// RateLimitConfig holds per-client token bucket settings
type RateLimitConfig struct {
	RPS   float64 // 0 disables throttling
	Burst int
}

// ProxyConfig holds the pass-through routes
type ProxyConfig struct {
	Routes  []ProxyRoute
	Timeout time.Duration
}

// ProxyRoute forwards /proxy/<Name> to Target
type ProxyRoute struct {
	Name   string
	Method string // "ANY" matches every method
	Target *url.URL
	Exact  bool // when false, /proxy/<Name>/* is forwarded as well
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	routes, err := ParseProxyRoutes(getEnv("PROXY_ROUTES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    getInt64Env("SERVER_MAX_BODY_BYTES", 5<<20),
		},
		Store: StoreConfig{
			Backend:        strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "lambdaless"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "lambdaless"),
			Stream:       getEnv("REDIS_STREAM", "lambdaless-sendgrid-events"),
			StreamMaxLen: getInt64Env("REDIS_STREAM_MAXLEN", 0),
		},
		Sink: SinkConfig{
			Backend:    strings.ToLower(getEnv("SINK_BACKEND", BackendRedis)),
			FileDir:    getEnv("SINK_FILE_DIR", "./data/events"),
			FilePrefix: getEnv("SINK_FILE_PREFIX", "sendgrid-events"),
		},
		Comments: CommentsConfig{
			DefaultPageSize: getIntEnv("COMMENTS_DEFAULT_PAGE_SIZE", 30),
			MaxPageSize:     getIntEnv("COMMENTS_MAX_PAGE_SIZE", 100),
		},
		Webhook: WebhookConfig{
			MaxRecordBytes: getIntEnv("WEBHOOK_MAX_RECORD_BYTES", 1_024_000),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatEnv("RATE_LIMIT_RPS", 0),
			Burst: getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Proxy: ProxyConfig{
			Routes:  routes,
			Timeout: getDurationEnv("PROXY_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: postgres, redis (got %q)", c.Store.Backend)
	}

	switch c.Sink.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" || c.Redis.Stream == "" {
			return fmt.Errorf("REDIS_ADDR and REDIS_STREAM are required for the redis sink")
		}
	case BackendFile:
		if c.Sink.FileDir == "" {
			return fmt.Errorf("SINK_FILE_DIR is required for the file sink")
		}
	default:
		return fmt.Errorf("SINK_BACKEND must be one of: redis, file (got %q)", c.Sink.Backend)
	}

	if c.Comments.MaxPageSize < 1 {
		return fmt.Errorf("COMMENTS_MAX_PAGE_SIZE must be positive")
	}
	if c.Comments.DefaultPageSize < 1 || c.Comments.DefaultPageSize > c.Comments.MaxPageSize {
		return fmt.Errorf("COMMENTS_DEFAULT_PAGE_SIZE must be between 1 and %d", c.Comments.MaxPageSize)
	}
	if c.Webhook.MaxRecordBytes < 1 {
		return fmt.Errorf("WEBHOOK_MAX_RECORD_BYTES must be positive")
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// NeedsRedis reports whether any configured backend talks to redis
func (c *Config) NeedsRedis() bool {
	return c.Store.Backend == BackendRedis || c.Sink.Backend == BackendRedis
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ParseProxyRoutes parses ";"-separated "name|METHOD|baseURL|exact" entries.
// The last two fields are optional; method defaults to ANY.
func ParseProxyRoutes(raw string) ([]ProxyRoute, error) {
	var routes []ProxyRoute
	seen := make(map[string]bool)

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) < 2 || len(parts) > 4 {
			return nil, fmt.Errorf("PROXY_ROUTES entry %q: want name|METHOD|baseURL[|exact]", entry)
		}

		name := strings.TrimSpace(parts[0])
		if name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("PROXY_ROUTES entry %q: invalid name", entry)
		}
		if seen[name] {
			return nil, fmt.Errorf("PROXY_ROUTES: duplicate route %q", name)
		}
		seen[name] = true

		route := ProxyRoute{Name: name, Method: "ANY"}
		target := strings.TrimSpace(parts[1])
		if len(parts) >= 3 {
			route.Method = strings.ToUpper(strings.TrimSpace(parts[1]))
			target = strings.TrimSpace(parts[2])
		}
		if len(parts) == 4 {
			switch strings.ToLower(strings.TrimSpace(parts[3])) {
			case "exact", "true", "1":
				route.Exact = true
			case "", "prefix", "false", "0":
			default:
				return nil, fmt.Errorf("PROXY_ROUTES entry %q: invalid exact flag", entry)
			}
		}

		u, err := url.Parse(target)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("PROXY_ROUTES entry %q: invalid target URL", entry)
		}
		route.Target = u

		routes = append(routes, route)
	}
	return routes, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
