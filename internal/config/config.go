package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	SessionCookieSecure bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CatalogCacheSize    int           `mapstructure:"CATALOG_CACHE_SIZE"`
	CatalogCacheTTL     time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
	VideoSigningKey     string        `mapstructure:"VIDEO_SIGNING_KEY"`
	VideoTokenTTL       time.Duration `mapstructure:"VIDEO_TOKEN_TTL"`
	AppLinkURL          string        `mapstructure:"APP_LINK_URL"`

	PayPalClientID     string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalBaseURL      string `mapstructure:"PAYPAL_BASE_URL"`

	PhonePeMerchantID  string `mapstructure:"PHONEPE_MERCHANT_ID"`
	PhonePeSaltKey     string `mapstructure:"PHONEPE_SALT_KEY"`
	PhonePeSaltIndex   string `mapstructure:"PHONEPE_SALT_INDEX"`
	PhonePeBaseURL     string `mapstructure:"PHONEPE_BASE_URL"`
	PhonePeRedirectURL string `mapstructure:"PHONEPE_REDIRECT_URL"`

	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`

	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

var envKeys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"REDIS_URL", "SESSION_TTL", "SESSION_COOKIE_SECURE",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
	"CATALOG_CACHE_SIZE", "CATALOG_CACHE_TTL",
	"VIDEO_SIGNING_KEY", "VIDEO_TOKEN_TTL", "APP_LINK_URL",
	"PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_SECRET", "PAYPAL_BASE_URL",
	"PHONEPE_MERCHANT_ID", "PHONEPE_SALT_KEY", "PHONEPE_SALT_INDEX",
	"PHONEPE_BASE_URL", "PHONEPE_REDIRECT_URL",
	"RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_NUMBER",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CATALOG_CACHE_SIZE", 256)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("VIDEO_TOKEN_TTL", "2h")
	v.SetDefault("APP_LINK_URL", "https://mediconsult.app/download")
	v.SetDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com")
	v.SetDefault("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox")
	v.SetDefault("PHONEPE_SALT_INDEX", "1")
	v.SetDefault("SMTP_PORT", 587)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL is not set; sessions are kept in process memory.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Production needs a
// shared session store and a stable video signing key.
func (c *Config) Validate() error {
	if c.IsProduction() && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required in production")
	}
	if c.IsProduction() && c.VideoSigningKey == "" {
		return fmt.Errorf("VIDEO_SIGNING_KEY is required in production")
	}
	if c.VideoSigningKey != "" {
		keyBytes, err := hex.DecodeString(c.VideoSigningKey)
		if err != nil {
			return fmt.Errorf("VIDEO_SIGNING_KEY is not valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("VIDEO_SIGNING_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if (c.PayPalClientID == "") != (c.PayPalClientSecret == "") {
		return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET must be set together")
	}
	if (c.RazorpayKeyID == "") != (c.RazorpayKeySecret == "") {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")
	}
	return nil
}

// PayPalEnabled reports whether PayPal credentials are configured.
func (c *Config) PayPalEnabled() bool { return c.PayPalClientID != "" }

// PhonePeEnabled reports whether PhonePe merchant credentials are configured.
func (c *Config) PhonePeEnabled() bool { return c.PhonePeMerchantID != "" && c.PhonePeSaltKey != "" }

// RazorpayEnabled reports whether Razorpay credentials are configured.
func (c *Config) RazorpayEnabled() bool { return c.RazorpayKeyID != "" }

// TwilioEnabled reports whether SMS can be delivered through Twilio.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// SMTPEnabled reports whether email can be delivered through an SMTP relay.
func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" && c.SMTPFrom != "" }
