package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the studio backend
type Config struct {
	// Server configuration
	Port           string        `envconfig:"PORT" default:"8080"`
	GinMode        string        `envconfig:"GIN_MODE" default:"debug"`
	APIVersion     string        `envconfig:"API_VERSION" default:"v1"`
	APIPrefix      string        `envconfig:"API_PREFIX" default:"/api"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout    time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes int           `envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Database  DatabaseConfig  `envconfig:"DB"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Auth      AuthConfig      `envconfig:"AUTH"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Kafka     KafkaConfig     `envconfig:"KAFKA"`
	WhatsApp  WhatsAppConfig  `envconfig:"WHATSAPP"`
	Analytics AnalyticsConfig `envconfig:"ANALYTICS"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	Name     string `envconfig:"NAME" default:"boxstudio"`
	User     string `envconfig:"USER" default:"boxstudio"`
	Password string `envconfig:"PASSWORD" default:"boxstudio"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`

	// DSN overrides the individual parts when set.
	DSN string `envconfig:"DSN"`

	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"50"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"true"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
	Addr     string `ignored:"true"`
}

// AuthConfig holds the bearer credentials accepted by the API
type AuthConfig struct {
	APIToken     string        `envconfig:"API_TOKEN" default:"dev-token"`
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	JWTIssuer    string        `envconfig:"JWT_ISSUER" default:"boxstudio"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`
	QRToken      string        `envconfig:"QR_TOKEN" default:"dev-qr-token"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled   bool          `envconfig:"ENABLED" default:"false"`
	PerMinute int           `envconfig:"PER_MINUTE" default:"600"`
	Window    time.Duration `envconfig:"WINDOW" default:"1m"`
	// Backend is "redis" or "memory".
	Backend string `envconfig:"BACKEND" default:"redis"`
}

// KafkaConfig holds broker settings for domain events and provider callbacks
type KafkaConfig struct {
	Enabled             bool     `envconfig:"ENABLED" default:"false"`
	Brokers             []string `envconfig:"BROKERS" default:"localhost:9092"`
	EventsTopic         string   `envconfig:"EVENTS_TOPIC" default:"studio-events"`
	WhatsAppStatusTopic string   `envconfig:"WHATSAPP_STATUS_TOPIC" default:"whatsapp-status"`
	ConsumerGroup       string   `envconfig:"CONSUMER_GROUP" default:"boxstudio-whatsapp-status"`
	ConsumerWorkers     int      `envconfig:"CONSUMER_WORKERS" default:"1"`
}

// WhatsAppConfig controls status callback handling
type WhatsAppConfig struct {
	// PermissiveStatus stores unrecognized provider statuses verbatim instead of rejecting them.
	PermissiveStatus bool `envconfig:"PERMISSIVE_STATUS" default:"false"`
}

// AnalyticsConfig controls analytics caching
type AnalyticsConfig struct {
	CacheEnabled bool `envconfig:"CACHE_ENABLED" default:"true"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	}
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.APIToken == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("either AUTH_API_TOKEN or AUTH_JWT_SECRET must be set")
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.RateLimit.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}
	return nil
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

func normalizeOrigins(origins []string) []string {
	var result []string
	for _, o := range origins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}

// AllowAllOrigins reports whether CORS is open to any origin
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
