package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ErFjeldheim/haugalandsved/pkg/config"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Public base URL used in payment redirects and SEO artifacts.
	BaseURL string `env:"BASE_URL" envDefault:"https://haugalandsved.no"`

	// Record store
	StoreURL           string `env:"STORE_URL" envDefault:"https://db.haugalandsved.no"`
	StoreAdminEmail    string `env:"STORE_ADMIN_EMAIL,required"`
	StoreAdminPassword string `env:"STORE_ADMIN_PASSWORD,required"`
	InventoryRecordID  string `env:"INVENTORY_RECORD_ID" envDefault:"6svgilvrehzayhb"`

	// Payments
	StripeSecretKey string `env:"STRIPE_SECRET_KEY,required"`

	// Stock reservations
	ReservationTTL   time.Duration `env:"RESERVATION_TTL" envDefault:"30m"`
	ReservationSweep time.Duration `env:"RESERVATION_SWEEP_INTERVAL" envDefault:"5m"`

	// SMTP
	SMTPHost     string   `env:"SMTP_HOST"`
	SMTPPort     int      `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string   `env:"SMTP_USERNAME"`
	SMTPPassword string   `env:"SMTP_PASSWORD"`
	SMTPFrom     string   `env:"SMTP_FROM" envDefault:"post@haugalandsved.no"`
	AdminEmails  []string `env:"ADMIN_EMAILS" envDefault:"norleifj@online.no,erik@fjelldata.com" envSeparator:","`

	// Kafka, optional
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Redis price cache, optional
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	PriceCacheTTL time.Duration `env:"PRICE_CACHE_TTL" envDefault:"60s"`

	// Store circuit breaker: the breaker trips once CBMinRequests calls have
	// been seen and half of them failed.
	CBMinRequests uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`
	CBTimeout     time.Duration `env:"CB_TIMEOUT" envDefault:"30s"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`

	// Static frontend directory; empty disables static serving.
	StaticDir string `env:"STATIC_DIR" envDefault:"web/dist"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ReservationTTL <= 0 {
		return fmt.Errorf("reservation TTL must be positive, got %s", c.ReservationTTL)
	}
	if c.ReservationSweep <= 0 {
		return fmt.Errorf("reservation sweep interval must be positive, got %s", c.ReservationSweep)
	}
	return nil
}

// MailEnabled reports whether SMTP is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// EventsEnabled reports whether Kafka is configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// CacheEnabled reports whether the Redis price cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
