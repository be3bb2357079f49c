package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Media    MediaConfig
	Catalog  CatalogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	Database        string        `env:"DB_NAME" envDefault:"bazaar"`
	MaxConnections  int           `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections  int           `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	// ConnectAttempts is how often the first ping is tried before giving up.
	ConnectAttempts int  `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	Migrate         bool `env:"DB_MIGRATE" envDefault:"true"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "console"
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

// GatewayConfig holds payment gateway credentials.
type GatewayConfig struct {
	BaseURL   string        `env:"GATEWAY_BASE_URL" envDefault:"https://api.razorpay.com"`
	KeyID     string        `env:"GATEWAY_KEY_ID"`
	KeySecret string        `env:"GATEWAY_KEY_SECRET"`
	Currency  string        `env:"GATEWAY_CURRENCY" envDefault:"INR"`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
}

// RedisConfig holds cache configuration. An empty Addr disables the cache.
type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	ProductTTL time.Duration `env:"REDIS_PRODUCT_TTL" envDefault:"60s"`
}

// AMQPConfig holds message broker configuration. An empty URL disables publishing.
type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"orders.events"`
	Queue    string `env:"AMQP_STOCK_QUEUE" envDefault:"orders.stock"`
}

// MediaConfig holds product image storage configuration.
type MediaConfig struct {
	LocalDir      string `env:"MEDIA_LOCAL_DIR" envDefault:"./media"`
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL" envDefault:"/media"`
	MaxUploadMB   int    `env:"MEDIA_MAX_UPLOAD_MB" envDefault:"5"`
	S3Enabled     bool   `env:"S3_ENABLED" envDefault:"false"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Region      string `env:"S3_REGION" envDefault:"ap-south-1"`
	S3Prefix      string `env:"S3_PREFIX" envDefault:"products/"`
}

// CatalogConfig holds catalog behavior switches.
type CatalogConfig struct {
	ReviewAutoApprove bool `env:"REVIEW_AUTO_APPROVE" envDefault:"false"`
	MaxPageSize       int  `env:"CATALOG_MAX_PAGE_SIZE" envDefault:"100"`
}

// Load reads an optional .env file, then parses environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT expiration must be positive")
	}

	if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
		return fmt.Errorf("gateway key id and key secret are required")
	}

	if len(c.Gateway.Currency) != 3 {
		return fmt.Errorf("invalid gateway currency: %q", c.Gateway.Currency)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Media.S3Enabled {
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Media.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Catalog.MaxPageSize < 1 {
		return fmt.Errorf("catalog max page size must be at least 1")
	}

	if c.Media.MaxUploadMB < 1 {
		return fmt.Errorf("media max upload size must be at least 1MB")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
