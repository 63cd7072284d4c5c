package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/i18n"
	"github.com/procoachmastery/website/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()
		identity := GetAppIdentity()

		observability.CLILogger.Info("=== " + identity.Description + " ===")
		observability.CLILogger.Info("")

		observability.CLILogger.Info("Application:")
		observability.CLILogger.Info("  Name:       " + identity.BinaryName)
		observability.CLILogger.Info("  Version:    " + versionInfo.Version)
		observability.CLILogger.Info("  Commit:     " + versionInfo.Commit)
		observability.CLILogger.Info("  Built:      " + versionInfo.BuildDate)
		observability.CLILogger.Info("")

		observability.CLILogger.Info("SSOT:")
		observability.CLILogger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		observability.CLILogger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		observability.CLILogger.Info("")

		observability.CLILogger.Info("Runtime:")
		observability.CLILogger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		observability.CLILogger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		observability.CLILogger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		observability.CLILogger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		observability.CLILogger.Info("")

		locales := make([]string, 0, 2)
		for _, l := range i18n.Supported() {
			locales = append(locales, l.String())
		}
		observability.CLILogger.Info("Site:")
		observability.CLILogger.Info("  Locales:        " + strings.Join(locales, ", "))
		observability.CLILogger.Info("  Default Locale: " + i18n.Default.String())
		observability.CLILogger.Info("")

		cfg, err := loadConfig()
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
			return
		}

		configPath := config.DefaultConfigPath(identity.ConfigName)
		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		observability.CLILogger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		observability.CLILogger.Info(fmt.Sprintf("  Body Limit:     %d bytes", cfg.Server.BodyLimit))
		observability.CLILogger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		observability.CLILogger.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		observability.CLILogger.Info("  Store Driver:   "+cfg.Store.Driver, zap.String("store_driver", cfg.Store.Driver))
		if strings.TrimSpace(cfg.Store.Addr) != "" {
			observability.CLILogger.Info("  Store Addr:     "+cfg.Store.Addr, zap.String("store_addr", cfg.Store.Addr))
		}
		if strings.TrimSpace(cfg.Store.URL) != "" {
			observability.CLILogger.Info("  Store URL:      (set)")
		}
		observability.CLILogger.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
		observability.CLILogger.Info("  Config File:    "+configPath, zap.String("config_file", configPath))
		observability.CLILogger.Info("")

		observability.CLILogger.Info("Rate Limits:")
		limits := cfg.FormLimits()
		for _, form := range core.Forms {
			limit := limits[form]
			observability.CLILogger.Info(fmt.Sprintf("  %-10s %d per %s", string(form)+":", limit.Max, limit.Window))
		}
		observability.CLILogger.Info("")

		observability.CLILogger.Info("Brevo:")
		observability.CLILogger.Info(fmt.Sprintf("  Enabled:            %t", cfg.Brevo.Enabled()), zap.Bool("brevo_enabled", cfg.Brevo.Enabled()))
		if cfg.Brevo.Enabled() {
			observability.CLILogger.Info("  API Key:            " + cfg.Brevo.RedactedAPIKey())
		}
		observability.CLILogger.Info("  Base URL:           " + cfg.Brevo.BaseURL)
		observability.CLILogger.Info(fmt.Sprintf("  Contact List:       %d", cfg.Brevo.ContactListID))
		observability.CLILogger.Info(fmt.Sprintf("  Waitlist List:      %d", cfg.Brevo.WaitlistListID))
		observability.CLILogger.Info(fmt.Sprintf("  Contact Template:   %d", cfg.Brevo.ContactTemplateID))
		observability.CLILogger.Info("  Notification Email: " + cfg.Brevo.NotificationEmail)
		observability.CLILogger.Info("")

		observability.CLILogger.Info("Waitlist Webhook:")
		observability.CLILogger.Info(fmt.Sprintf("  Enabled:        %t", cfg.Webhook.Enabled()), zap.Bool("webhook_enabled", cfg.Webhook.Enabled()))
		observability.CLILogger.Info("  Timeout:        " + cfg.Webhook.Timeout.String())
		observability.CLILogger.Info("")

		observability.CLILogger.Info("=== End Environment Information ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
