package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/luxewear/storefront/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr    string `default:"" usage:"Redis address for cart snapshots; empty runs memory-only sessions" flag:"redis-addr"`
	ImageBaseURL string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com)" flag:"image-base-url"`
	TaxRate      string `default:"0.10" usage:"Sales tax rate as a fraction of the discounted subtotal" flag:"tax-rate"`

	SessionTTL  time.Duration `default:"720h" usage:"Session cookie lifetime" flag:"session-ttl"`
	SnapshotTTL time.Duration `default:"168h" usage:"Cart snapshot lifetime in Redis" flag:"snapshot-ttl"`

	Shipping  ShippingConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ShippingConfig holds the fees and free-shipping thresholds of the two
// offered delivery options. Amounts are decimal strings.
type ShippingConfig struct {
	StandardFee      string `default:"5.99" usage:"Standard shipping fee" flag:"standard-fee"`
	StandardFreeOver string `default:"50"   usage:"Subtotal at which standard shipping is free" flag:"standard-free-over"`
	ExpressFee       string `default:"14.99" usage:"Express shipping fee" flag:"express-fee"`
	ExpressFreeOver  string `default:"150"   usage:"Subtotal at which express shipping is free" flag:"express-free-over"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (session cookie)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STOREFRONT_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisAddr == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisAddr = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

// Tax parses the configured tax rate.
func (c *Config) Tax() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid tax rate %q", c.TaxRate)
	}
	return rate, nil
}

// ShippingMethods parses the configured delivery options, standard first so
// it acts as the default.
func (c *Config) ShippingMethods() ([]pricing.ShippingMethod, error) {
	parse := func(name, raw string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Decimal{}, errors.Wrapf(err, "invalid %s %q", name, raw)
		}
		return d, nil
	}

	standardFee, err := parse("standard fee", c.Shipping.StandardFee)
	if err != nil {
		return nil, err
	}
	standardFree, err := parse("standard threshold", c.Shipping.StandardFreeOver)
	if err != nil {
		return nil, err
	}
	expressFee, err := parse("express fee", c.Shipping.ExpressFee)
	if err != nil {
		return nil, err
	}
	expressFree, err := parse("express threshold", c.Shipping.ExpressFreeOver)
	if err != nil {
		return nil, err
	}

	return []pricing.ShippingMethod{
		{
			ID:            "standard",
			Name:          "Standard Shipping",
			Description:   "3-5 business days",
			Fee:           standardFee,
			FreeThreshold: standardFree,
		},
		{
			ID:            "express",
			Name:          "Express Shipping",
			Description:   "1-2 business days",
			Fee:           expressFee,
			FreeThreshold: expressFree,
		},
	}, nil
}
