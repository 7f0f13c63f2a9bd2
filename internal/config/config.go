package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configurations
// All sensitive values are loaded from the environment or .env
type Config struct {
	// Server configuration
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8081"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:8081"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	// Storage backend: redis, postgres or memory
	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`

	// DB configuration
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"qrstats"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	// Redis configuration
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Identifier allocation
	IDStrategy            string `env:"ID_STRATEGY" envDefault:"base62"`
	IDLength              int    `env:"ID_LENGTH" envDefault:"8"`
	MaxAllocationAttempts int    `env:"MAX_ALLOCATION_ATTEMPTS" envDefault:"5"`
	ExpectedTargets       int    `env:"EXPECTED_TARGETS" envDefault:"1000000"`

	// Access gate
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Rate limit per IP address
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// Allowed CORS origins, all origins when empty
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Redirect counting
	CounterWorkers   int           `env:"COUNTER_WORKERS" envDefault:"4"`
	CounterQueueSize int           `env:"COUNTER_QUEUE_SIZE" envDefault:"1024"`
	CounterTimeout   time.Duration `env:"COUNTER_TIMEOUT" envDefault:"2s"`
}

// LoadConfig loads configuration from environment variables
// Returns error if a value cannot be parsed or fails validation
func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks if all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of redis, postgres, memory, got %q", c.StoreBackend)
	}

	// Validate database password in production
	if c.IsProduction() && c.StoreBackend == "postgres" && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}

	switch c.IDStrategy {
	case "base62", "uuid", "nanoid":
	default:
		return fmt.Errorf("ID_STRATEGY must be one of base62, uuid, nanoid, got %q", c.IDStrategy)
	}

	if c.IDLength < 4 || c.IDLength > 32 {
		return fmt.Errorf("ID_LENGTH must be between 4 and 32, got %d", c.IDLength)
	}

	if c.MaxAllocationAttempts < 1 {
		return fmt.Errorf("MAX_ALLOCATION_ATTEMPTS must be at least 1, got %d", c.MaxAllocationAttempts)
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}

	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}

	if c.CounterWorkers < 1 || c.CounterQueueSize < 1 {
		return fmt.Errorf("COUNTER_WORKERS and COUNTER_QUEUE_SIZE must be positive")
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PostgresDSN builds the connection string for the postgres backend
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
