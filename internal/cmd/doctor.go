package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core/store"
	"github.com/procoachmastery/website/internal/observability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the configuration and its dependencies and suggest fixes for common issues.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		identity := GetAppIdentity()
		observability.CLILogger.Info("=== " + identity.BinaryName + " doctor ===")
		observability.CLILogger.Info("")
		observability.CLILogger.Info("Running diagnostic checks...")
		observability.CLILogger.Info("")

		allChecks := true
		totalChecks := 7

		// Check 1: Go version
		goVersion := runtime.Version()
		observability.CLILogger.Info(fmt.Sprintf("[1/%d] Checking Go runtime... ✅ %s %s/%s", totalChecks, goVersion, runtime.GOOS, runtime.GOARCH),
			zap.String("go_version", goVersion))

		// Check 2: Gofulmen and Crucible
		version := crucible.GetVersion()
		if version.Gofulmen != "" && version.Crucible != "" {
			observability.CLILogger.Info(fmt.Sprintf("[2/%d] Checking Gofulmen/Crucible... ✅ v%s / v%s", totalChecks, version.Gofulmen, version.Crucible))
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[2/%d] Checking Gofulmen/Crucible... ⚠️  version metadata unavailable", totalChecks))
			allChecks = false
		}

		// Check 3: Config directory
		configPath := config.DefaultConfigPath(identity.ConfigName)
		if configPath == "" {
			observability.CLILogger.Warn(fmt.Sprintf("[3/%d] Checking config directory... ⚠️  cannot resolve XDG config directory", totalChecks))
		} else {
			observability.CLILogger.Info(fmt.Sprintf("[3/%d] Checking config file... %s (%s)", totalChecks, configPath, existenceStatus(fileExists(configPath))),
				zap.String("config_path", configPath))
		}

		// Check 4: Config validity
		cfg, cfgErr := loadConfig()
		if cfgErr != nil {
			observability.CLILogger.Error(fmt.Sprintf("[4/%d] Checking configuration... ❌ invalid", totalChecks), zap.Error(cfgErr))
			allChecks = false
		} else {
			observability.CLILogger.Info(fmt.Sprintf("[4/%d] Checking configuration... ✅ valid", totalChecks))
		}

		// Check 5: Rate limit store
		if cfgErr == nil {
			if err := pingStore(ctx, cfg.Store); err != nil {
				observability.CLILogger.Error(fmt.Sprintf("[5/%d] Checking rate limit store... ❌ %s unreachable", totalChecks, cfg.Store.Driver), zap.Error(err))
				allChecks = false
			} else {
				observability.CLILogger.Info(fmt.Sprintf("[5/%d] Checking rate limit store... ✅ %s", totalChecks, cfg.Store.Driver))
			}
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[5/%d] Checking rate limit store... ⚠️  skipped (config not loaded)", totalChecks))
		}

		// Check 6: Brevo
		if cfgErr == nil {
			if cfg.Brevo.Enabled() {
				observability.CLILogger.Info(fmt.Sprintf("[6/%d] Checking Brevo... ✅ api key %s, contact list %d, waitlist list %d",
					totalChecks, cfg.Brevo.RedactedAPIKey(), cfg.Brevo.ContactListID, cfg.Brevo.WaitlistListID))
				if cfg.Brevo.ContactListID == 0 || cfg.Brevo.WaitlistListID == 0 {
					observability.CLILogger.Info("       Contacts are created without list membership while a list id is 0.")
				}
			} else {
				observability.CLILogger.Warn(fmt.Sprintf("[6/%d] Checking Brevo... ⚠️  BREVO_API_KEY not set; CRM sync and notification email are disabled", totalChecks))
			}
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[6/%d] Checking Brevo... ⚠️  skipped (config not loaded)", totalChecks))
		}

		// Check 7: Waitlist webhook
		if cfgErr == nil {
			if cfg.Webhook.Enabled() {
				observability.CLILogger.Info(fmt.Sprintf("[7/%d] Checking waitlist webhook... ✅ configured", totalChecks))
			} else {
				observability.CLILogger.Warn(fmt.Sprintf("[7/%d] Checking waitlist webhook... ⚠️  WAITLIST_WEBHOOK_URL not set", totalChecks))
			}
		} else {
			observability.CLILogger.Warn(fmt.Sprintf("[7/%d] Checking waitlist webhook... ⚠️  skipped (config not loaded)", totalChecks))
		}

		observability.CLILogger.Info("")
		if allChecks {
			observability.CLILogger.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", identity.BinaryName))
		} else {
			observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		observability.CLILogger.Info("")
		observability.CLILogger.Info("=== End Diagnostics ===")
	},
}

var (
	doctorInitForce    bool
	doctorInitBrevoKey string
)

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath(GetAppIdentity().ConfigName)
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		brevoKey := strings.TrimSpace(doctorInitBrevoKey)
		if strings.EqualFold(brevoKey, "prompt") {
			key, err := promptForValue("Enter Brevo API key (leave blank to skip): ")
			if err != nil {
				return err
			}
			brevoKey = key
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		mode := os.FileMode(0644)
		if brevoKey != "" {
			mode = 0600
		}

		if err := os.WriteFile(configPath, []byte(buildInitConfig(GetAppIdentity().BinaryName, brevoKey)), mode); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

// deploymentEnv lists the variables operators usually set in production.
var deploymentEnv = []string{
	"BREVO_API_KEY",
	"BREVO_CONTACT_LIST_ID",
	"BREVO_WAITLIST_LIST_ID",
	"BREVO_NOTIFICATION_EMAIL",
	"BREVO_CONTACT_TEMPLATE_ID",
	"WAITLIST_WEBHOOK_URL",
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration status and paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := GetAppIdentity()
		configPath := config.DefaultConfigPath(identity.ConfigName)

		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info(fmt.Sprintf("  Config file:   %s (%s)", configPath, existenceStatus(fileExists(configPath))))

		observability.CLILogger.Info("")
		observability.CLILogger.Info("Environment:")
		prefix := strings.TrimSuffix(identity.EnvPrefix, "_")
		for _, name := range deploymentEnv {
			observability.CLILogger.Info(fmt.Sprintf("  %s: %s  %s_%s: %s",
				name, envStatus(name), prefix, name, envStatus(prefix+"_"+name)))
		}

		cfg, err := loadConfig()
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
			return nil
		}

		observability.CLILogger.Info("")
		observability.CLILogger.Info("Effective Settings:")
		observability.CLILogger.Info(fmt.Sprintf("  store.driver: %s", cfg.Store.Driver))
		observability.CLILogger.Info(fmt.Sprintf("  rate_limit: %d per %s", cfg.RateLimit.Max, cfg.RateLimit.Window))
		for form, limit := range cfg.FormLimits() {
			observability.CLILogger.Info(fmt.Sprintf("  rate_limit.%s: %d per %s", form, limit.Max, limit.Window))
		}
		observability.CLILogger.Info(fmt.Sprintf("  brevo.enabled: %t", cfg.Brevo.Enabled()))
		observability.CLILogger.Info(fmt.Sprintf("  brevo.notification_email: %s", cfg.Brevo.NotificationEmail))
		observability.CLILogger.Info(fmt.Sprintf("  webhook.enabled: %t", cfg.Webhook.Enabled()))
		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		observability.CLILogger.Info("Config is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorConfigCmd)
	doctorCmd.AddCommand(doctorValidateCmd)

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
	doctorInitCmd.Flags().StringVar(&doctorInitBrevoKey, "brevo-key", "", "set the Brevo api key or use 'prompt' to enter")
}

func pingStore(ctx context.Context, cfg config.StoreConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	return st.Ping(ctx)
}

func buildInitConfig(binaryName, brevoKey string) string {
	lines := []string{
		fmt.Sprintf("# %s config - created by '%s doctor init'", binaryName, binaryName),
		"server:",
		"  host: 0.0.0.0",
		"  port: 8080",
		"store:",
		"  driver: memory",
		"rate_limit:",
		"  max: 5",
		"  window: 15m",
		"brevo:",
	}

	if strings.TrimSpace(brevoKey) != "" {
		lines = append(lines, fmt.Sprintf("  api_key: %q", brevoKey))
	} else {
		lines = append(lines, "  # api_key: \"\"  # Set via BREVO_API_KEY or uncomment")
	}

	lines = append(lines,
		"  contact_list_id: 0",
		"  waitlist_list_id: 0",
		"  notification_email: info@procoachmastery.com",
		"webhook:",
		"  # url: https://hooks.example.com/waitlist",
	)

	return strings.Join(lines, "\n") + "\n"
}

func promptForValue(prompt string) (string, error) {
	if _, err := fmt.Fprint(os.Stdout, prompt); err != nil {
		return "", err
	}
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func existenceStatus(exists bool) string {
	if exists {
		return "exists"
	}
	return "missing"
}

func envStatus(name string) string {
	if strings.TrimSpace(os.Getenv(name)) != "" {
		return "(set)"
	}
	return "(not set)"
}
