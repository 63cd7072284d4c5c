// Package config provides centralized configuration management for the site.
// Values are layered through viper: built-in defaults, an optional YAML file,
// environment variables and command flags, then decoded into Config.
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/procoachmastery/website/internal/core"
)

// DefaultEnvPrefix is used when the app identity carries no prefix.
const DefaultEnvPrefix = "PROCOACH"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// unprefixedEnv lists deployment variables read without the app prefix.
// The prefixed form (PROCOACH_BREVO_API_KEY) wins when both are set.
var unprefixedEnv = map[string]string{
	"brevo.api_key":             "BREVO_API_KEY",
	"brevo.contact_list_id":     "BREVO_CONTACT_LIST_ID",
	"brevo.waitlist_list_id":    "BREVO_WAITLIST_LIST_ID",
	"brevo.notification_email":  "BREVO_NOTIFICATION_EMAIL",
	"brevo.contact_template_id": "BREVO_CONTACT_TEMPLATE_ID",
	"webhook.url":               "WAITLIST_WEBHOOK_URL",
}

// SetDefaults registers the default value of every key. Keys must be known
// to viper for AllSettings to pick up their environment overrides.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.body_limit", 64<<10)
	v.SetDefault("server.locale_bypass", []string{})

	// Store defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.url", "")
	v.SetDefault("store.addr", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.db", 0)
	v.SetDefault("store.prefix", "procoach:ratelimit:")

	// Rate limit defaults
	v.SetDefault("rate_limit.max", 5)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.forms", map[string]any{})

	// Brevo defaults
	v.SetDefault("brevo.api_key", "")
	v.SetDefault("brevo.base_url", "https://api.brevo.com/v3")
	v.SetDefault("brevo.contact_list_id", 0)
	v.SetDefault("brevo.waitlist_list_id", 0)
	v.SetDefault("brevo.notification_email", "info@procoachmastery.com")
	v.SetDefault("brevo.contact_template_id", 0)
	v.SetDefault("brevo.timeout", "10s")
	v.SetDefault("brevo.rps", 5.0)
	v.SetDefault("brevo.burst", 5)

	// Webhook defaults
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.rps", 2.0)
	v.SetDefault("webhook.burst", 2)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")
	v.SetDefault("logging.environment", "production")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

// BindEnv enables {PREFIX}_{SECTION}_{KEY} lookups and the unprefixed
// deployment variables.
func BindEnv(v *viper.Viper, prefix string) error {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "_")
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range unprefixedEnv {
		prefixed := prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return fmt.Errorf("bind env %s: %w", name, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings.
func New(envPrefix string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if err := BindEnv(v, envPrefix); err != nil {
		return nil, err
	}
	return v, nil
}

// Load decodes the current viper state into a validated Config and stores
// it as the active configuration. Safe to call again on reload.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config: nil viper instance")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Brevo.APIKey = strings.TrimSpace(c.Brevo.APIKey)
	c.Brevo.NotificationEmail = strings.TrimSpace(c.Brevo.NotificationEmail)
	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Profile = strings.ToLower(strings.TrimSpace(c.Logging.Profile))

	if len(c.RateLimit.Forms) > 0 {
		forms := make(map[string]FormLimit, len(c.RateLimit.Forms))
		for name, limit := range c.RateLimit.Forms {
			forms[strings.ToLower(strings.TrimSpace(name))] = limit
		}
		c.RateLimit.Forms = forms
	}
}

// Validate reports every configuration problem found, joined into one error.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.BodyLimit < 0 {
		problems = append(problems, "server.body_limit must not be negative")
	}

	switch c.Store.Driver {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(c.Store.URL) == "" && strings.TrimSpace(c.Store.Addr) == "" {
			problems = append(problems, "store.url or store.addr is required for the redis driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported store.driver %q", c.Store.Driver))
	}

	if c.RateLimit.Max <= 0 {
		problems = append(problems, "rate_limit.max must be positive")
	}
	if c.RateLimit.Window <= 0 {
		problems = append(problems, "rate_limit.window must be positive")
	}
	for name, limit := range c.RateLimit.Forms {
		if _, ok := core.ParseFormKind(name); !ok {
			problems = append(problems, fmt.Sprintf("rate_limit.forms: unknown form %q", name))
		}
		if limit.Max < 0 || limit.Window < 0 {
			problems = append(problems, fmt.Sprintf("rate_limit.forms.%s must not be negative", name))
		}
	}

	if c.Brevo.NotificationEmail != "" {
		if _, err := mail.ParseAddress(c.Brevo.NotificationEmail); err != nil {
			problems = append(problems, fmt.Sprintf("brevo.notification_email %q is not an address", c.Brevo.NotificationEmail))
		}
	}
	if c.Brevo.ContactListID < 0 || c.Brevo.WaitlistListID < 0 {
		problems = append(problems, "brevo list ids must not be negative")
	}

	if c.Webhook.RPS < 0 || c.Webhook.Burst < 0 {
		problems = append(problems, "webhook.rps and webhook.burst must not be negative")
	}
	if c.Webhook.URL != "" {
		parsed, err := url.Parse(c.Webhook.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			problems = append(problems, fmt.Sprintf("webhook.url %q must be an absolute http(s) URL", c.Webhook.URL))
		}
	}

	switch c.Logging.Profile {
	case "", "structured", "simple":
	default:
		problems = append(problems, fmt.Sprintf("logging.profile %q must be structured or simple", c.Logging.Profile))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// FormLimits resolves the effective limit of every known form.
func (c *Config) FormLimits() map[core.FormKind]FormLimit {
	limits := make(map[core.FormKind]FormLimit, len(core.Forms))
	for _, form := range core.Forms {
		limit := FormLimit{Max: c.RateLimit.Max, Window: c.RateLimit.Window}
		if override, ok := c.RateLimit.Forms[string(form)]; ok {
			if override.Max > 0 {
				limit.Max = override.Max
			}
			if override.Window > 0 {
				limit.Window = override.Window
			}
		}
		limits[form] = limit
	}
	return limits
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath(configName string) string {
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
