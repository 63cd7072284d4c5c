package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core/engine"
	"github.com/procoachmastery/website/internal/core/store"
	errwrap "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/metrics"
	"github.com/procoachmastery/website/internal/observability"
	"github.com/procoachmastery/website/internal/server"
	"github.com/procoachmastery/website/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct {
	enabled bool
}

func (t telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if !t.enabled {
		return nil
	}
	if !observability.MetricsReady() {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the website and form intake server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload config; rate limits apply live, other settings need a restart

The server will cleanly shut down the HTTP server, close the rate limit
store and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()

		cfg, err := loadConfig()
		if err != nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Invalid configuration", err)
		}

		if err := observability.InitServerLogger(observability.ServerLoggerOptions{
			Service:     identity.BinaryName,
			Level:       cfg.Logging.Level,
			Profile:     cfg.Logging.Profile,
			Environment: cfg.Logging.Environment,
			Namespace:   namespace,
		}); err != nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
		}

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}
		startedAt := time.Now()
		metrics.SetServerStartTime(startedAt.Unix())

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()),
			zap.String("store_driver", cfg.Store.Driver))

		rateStore, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			observability.ServerLogger.Error("Failed to open rate limit store", zap.Error(err))
			return errwrap.WrapInternal(cmd.Context(), err, "rate limit store unavailable")
		}

		intake := buildIntake(cfg, rateStore)

		hm := handlers.NewHealthManager(versionInfo.Version)
		hm.RegisterChecker("telemetry", telemetryHealthChecker{enabled: cfg.Metrics.Enabled})
		hm.RegisterChecker("app_identity", identityHealthChecker{
			binaryName: identity.BinaryName,
			envPrefix:  identity.EnvPrefix,
			configName: identity.ConfigName,
		})
		hm.RegisterChecker("rate_limit_store", handlers.HealthCheckFunc(rateStore.Ping))

		handlers.SetAppIdentity(identity)
		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Dependencies{
			Intake:       intake,
			Health:       hm,
			BodyLimit:    cfg.Server.BodyLimit,
			LocaleBypass: cfg.Server.LocaleBypass,
		})

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		uptimeCtx, stopUptime := context.WithCancel(context.Background())
		go reportUptime(uptimeCtx, startedAt)

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.SyncServerLogger(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Close the rate limit store and stop the exporter
		signals.OnShutdown(func(ctx context.Context) error {
			stopUptime()
			if err := rateStore.Close(); err != nil {
				observability.ServerLogger.Warn("Rate limit store close failed", zap.Error(err))
			}
			if err := observability.StopMetrics(); err != nil {
				observability.ServerLogger.Warn("Metrics exporter stop failed", zap.Error(err))
			}
			return nil
		})

		// Handler 3: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			return reloadConfig(ctx, cfg, intake.Limiter)
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port))
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// reloadConfig re-reads the config file and applies what can change without
// a restart. Settings bound at startup are logged when they differ.
func reloadConfig(ctx context.Context, current *config.Config, limiter *engine.RateLimiter) error {
	observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			metrics.RecordConfigReload(false)
			observability.ServerLogger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return errwrap.WrapWithContext(ctx, errwrap.CodeConfigInvalid, err, "config reload failed", nil)
		}
		observability.ServerLogger.Info("No config file found - using defaults and environment variables")
	}

	next, err := config.Load(viper.GetViper())
	if err != nil {
		metrics.RecordConfigReload(false)
		observability.ServerLogger.Error("Reloaded config is invalid, keeping previous settings", zap.Error(err))
		return errwrap.WrapWithContext(ctx, errwrap.CodeConfigInvalid, err, "config reload failed", nil)
	}

	limiter.ApplyOverrides(rateLimitOverrides(next))
	metrics.RecordConfigReload(true)

	if restart := restartRequired(current, next); len(restart) > 0 {
		observability.ServerLogger.Warn("Config changes require a restart to take effect",
			zap.Strings("settings", restart))
	}

	observability.ServerLogger.Info("Configuration reloaded successfully",
		zap.String("file", viper.ConfigFileUsed()))
	return nil
}

// restartRequired lists settings that differ but are only read at startup.
func restartRequired(current, next *config.Config) []string {
	var changed []string
	if current.Server.Host != next.Server.Host || current.Server.Port != next.Server.Port {
		changed = append(changed, "server.address")
	}
	if current.Store != next.Store {
		changed = append(changed, "store")
	}
	if current.Brevo != next.Brevo {
		changed = append(changed, "brevo")
	}
	if current.Webhook != next.Webhook {
		changed = append(changed, "webhook")
	}
	if current.Logging != next.Logging {
		changed = append(changed, "logging")
	}
	if current.Metrics != next.Metrics {
		changed = append(changed, "metrics")
	}
	return changed
}

func reportUptime(ctx context.Context, startedAt time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetServerUptime(int64(time.Since(startedAt).Seconds()))
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
