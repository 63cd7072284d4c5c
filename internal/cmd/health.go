package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/observability"
)

// selfCheck is one step of the health command. run returns a short detail
// for the success line.
type selfCheck struct {
	name     string
	exitCode foundry.ExitCode
	run      func(ctx context.Context) (string, error)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the binary can serve: version metadata, configuration, the
rate limit store and the form intake wiring. Exits non-zero on the first failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", nil)
			return
		}
		logger.Info("Running health check...")

		for _, check := range selfChecks() {
			detail, err := check.run(cmd.Context())
			if err != nil {
				logger.Error("❌ FAIL: "+check.name, zap.Error(err))
				ExitWithCode(logger, check.exitCode, check.name+" failed", err)
				return
			}
			logger.Info(fmt.Sprintf("✅ %s %s", check.name, detail))
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func selfChecks() []selfCheck {
	var cfg *config.Config
	return []selfCheck{
		{
			name:     "version",
			exitCode: foundry.ExitConfigInvalid,
			run: func(context.Context) (string, error) {
				if versionInfo.Version == "" {
					return "", errors.New("version information missing")
				}
				return versionInfo.Version, nil
			},
		},
		{
			name:     "configuration",
			exitCode: foundry.ExitConfigInvalid,
			run: func(context.Context) (string, error) {
				var err error
				cfg, err = loadConfig()
				if err != nil {
					return "", err
				}
				return "valid (store " + cfg.Store.Driver + ")", nil
			},
		},
		{
			name:     "form intake",
			exitCode: foundry.ExitExternalServiceUnavailable,
			run: func(ctx context.Context) (string, error) {
				st, err := openStore(ctx)
				if err != nil {
					return "", fmt.Errorf("rate limit store: %w", err)
				}
				defer st.Close() //nolint:errcheck
				if err := st.Ping(ctx); err != nil {
					return "", fmt.Errorf("rate limit store: %w", err)
				}
				intake := buildIntake(cfg, st)
				if intake.Limiter == nil || intake.Validator == nil {
					return "", errors.New("form intake incomplete")
				}
				return "ready", nil
			},
		},
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
