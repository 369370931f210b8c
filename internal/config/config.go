// Package config loads process-wide settings from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minSecretLen = 32

// Config holds every tunable the server reads. It is loaded exactly once in
// main; nothing re-reads the environment afterwards.
type Config struct {
	Addr    string `mapstructure:"ADDR"`
	DSN     string `mapstructure:"DSN"`
	BaseURL string `mapstructure:"BASE_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	RequestTTL time.Duration `mapstructure:"REQUEST_TTL"`
	LinkTTL    time.Duration `mapstructure:"LINK_TTL"`

	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	LicenseTTL              time.Duration `mapstructure:"LICENSE_TTL"`
	GrandfatheredLicenseTTL time.Duration `mapstructure:"GRANDFATHERED_LICENSE_TTL"`

	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	CleanupInterval time.Duration `mapstructure:"CLEANUP_INTERVAL"`

	PollLimit  int           `mapstructure:"POLL_LIMIT"`
	PollWindow time.Duration `mapstructure:"POLL_WINDOW"`

	GrandfatheredFile string `mapstructure:"GRANDFATHERED_FILE"`

	SMTPAddr     string `mapstructure:"SMTP_ADDR"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	SiteName     string `mapstructure:"SITE_NAME"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePriceMonthly  string `mapstructure:"STRIPE_PRICE_MONTHLY"`
	StripePriceAnnual   string `mapstructure:"STRIPE_PRICE_ANNUAL"`
}

// Load reads configuration from the environment with defaults applied.
func Load() (*Config, error) {
	viper.SetDefault("ADDR", ":8080")
	viper.SetDefault("DSN", "")
	viper.SetDefault("BASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")

	viper.SetDefault("RATE_LIMIT_MAX", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1h")
	viper.SetDefault("REQUEST_TTL", "30m")
	viper.SetDefault("LINK_TTL", "15m")
	viper.SetDefault("SESSION_TTL", "720h")
	viper.SetDefault("LICENSE_TTL", "72h")
	viper.SetDefault("GRANDFATHERED_LICENSE_TTL", "17520h")
	viper.SetDefault("CACHE_TTL", "30s")
	viper.SetDefault("CLEANUP_INTERVAL", "5m")
	viper.SetDefault("POLL_LIMIT", 60)
	viper.SetDefault("POLL_WINDOW", "1m")

	viper.SetDefault("GRANDFATHERED_FILE", "")
	viper.SetDefault("SMTP_ADDR", "")
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "")
	viper.SetDefault("SITE_NAME", "Remove YouTube Suggestions")

	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("STRIPE_PRICE_MONTHLY", "")
	viper.SetDefault("STRIPE_PRICE_ANNUAL", "")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on absent or weak required settings.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return errors.New("config: DSN is required")
	}
	if c.BaseURL == "" {
		return errors.New("config: BASE_URL is required")
	}
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.StripeSecretKey == "" {
		return errors.New("config: STRIPE_SECRET_KEY is required")
	}
	if c.StripeWebhookSecret == "" {
		return errors.New("config: STRIPE_WEBHOOK_SECRET is required")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: rate limit max and window must be positive")
	}
	if c.LinkTTL > c.RequestTTL {
		return errors.New("config: LINK_TTL must not exceed REQUEST_TTL")
	}
	return nil
}
