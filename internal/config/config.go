package config

import (
	"strings"
	"time"
)

// Config represents the complete application configuration.
// Precedence, lowest first: built-in defaults, the YAML config file,
// environment variables, command flags.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Brevo     BrevoConfig     `mapstructure:"brevo"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// BodyLimit caps form request bodies in bytes.
	BodyLimit int64 `mapstructure:"body_limit"`

	// LocaleBypass replaces the default list of path prefixes that skip
	// the locale redirect. Empty keeps the default.
	LocaleBypass []string `mapstructure:"locale_bypass"`
}

// StoreConfig selects the rate limit state backend.
type StoreConfig struct {
	// Driver is "memory" (single process) or "redis".
	Driver string `mapstructure:"driver"`

	// URL is a redis:// URL. When set it wins over Addr/Password/DB.
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Prefix namespaces redis keys.
	Prefix string `mapstructure:"prefix"`
}

// RateLimitConfig holds the default fixed window and per-form overrides.
type RateLimitConfig struct {
	Max    int                  `mapstructure:"max"`
	Window time.Duration        `mapstructure:"window"`
	Forms  map[string]FormLimit `mapstructure:"forms"`
}

// FormLimit overrides the window for one form. Zero fields keep the default.
type FormLimit struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

// BrevoConfig configures the CRM and notification mail.
type BrevoConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	ContactListID     int64         `mapstructure:"contact_list_id"`
	WaitlistListID    int64         `mapstructure:"waitlist_list_id"`
	NotificationEmail string        `mapstructure:"notification_email"`
	ContactTemplateID int64         `mapstructure:"contact_template_id"`
	Timeout           time.Duration `mapstructure:"timeout"`

	// RPS and Burst pace outbound calls. RPS <= 0 disables pacing.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Enabled reports whether an API key is present.
func (b BrevoConfig) Enabled() bool {
	return strings.TrimSpace(b.APIKey) != ""
}

// RedactedAPIKey returns the key with all but the last four characters masked.
func (b BrevoConfig) RedactedAPIKey() string {
	key := strings.TrimSpace(b.APIKey)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// WebhookConfig configures the waitlist webhook.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
}

// Enabled reports whether a webhook URL is present.
func (w WebhookConfig) Enabled() bool {
	return strings.TrimSpace(w.URL) != ""
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`

	Environment string `mapstructure:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}
