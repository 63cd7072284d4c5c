// Package observability holds the process-wide loggers and the telemetry
// system. Both are nil until initialized; callers guard every use.
package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger is used for CLI commands (SIMPLE profile)
	CLILogger *logging.Logger

	// ServerLogger is used by the HTTP server and everything it calls
	ServerLogger *logging.Logger
)

// Server log profiles accepted in configuration.
const (
	ProfileStructured = "structured"
	ProfileSimple     = "simple"
)

// ServerLoggerOptions configures the server logger.
type ServerLoggerOptions struct {
	Service     string
	Level       string
	Profile     string
	Environment string
	Namespace   string
}

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// InitServerLogger builds ServerLogger from opts. The structured profile
// writes JSON with correlation ids to stderr; the simple profile writes
// human-readable lines for local development.
func InitServerLogger(opts ServerLoggerOptions) error {
	config, err := serverLoggerConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(config)
	if err != nil {
		return fmt.Errorf("initialize server logger: %w", err)
	}

	ServerLogger = logger
	return nil
}

func serverLoggerConfig(opts ServerLoggerOptions) (*logging.LoggerConfig, error) {
	environment := strings.TrimSpace(opts.Environment)
	if environment == "" {
		environment = "production"
	}

	staticFields := make(map[string]any)
	if opts.Namespace != "" {
		staticFields["namespace"] = opts.Namespace
	}

	config := &logging.LoggerConfig{
		DefaultLevel: parseLogLevel(opts.Level),
		Service:      opts.Service,
		Environment:  environment,
		StaticFields: staticFields,
		EnableCaller: true,
	}

	switch strings.ToLower(strings.TrimSpace(opts.Profile)) {
	case "", ProfileStructured:
		config.Profile = logging.ProfileStructured
		config.EnableStacktrace = true
		config.Middleware = []logging.MiddlewareConfig{
			{Name: "correlation", Enabled: true, Order: 100, Config: make(map[string]any)},
		}
		config.Sinks = []logging.SinkConfig{consoleSink("json")}
	case ProfileSimple:
		config.Profile = logging.ProfileSimple
		config.Sinks = []logging.SinkConfig{consoleSink("console")}
	default:
		return nil, fmt.Errorf("unsupported log profile %q (use %s or %s)", opts.Profile, ProfileStructured, ProfileSimple)
	}

	return config, nil
}

func consoleSink(format string) logging.SinkConfig {
	return logging.SinkConfig{
		Type:   "console",
		Format: format,
		Console: &logging.ConsoleSinkConfig{
			Stream:   "stderr",
			Colorize: false,
		},
	}
}

// SyncServerLogger flushes buffered server log entries. Sync errors on
// closed stdio are expected at shutdown and only reported to the caller.
func SyncServerLogger() error {
	if ServerLogger == nil {
		return nil
	}
	return ServerLogger.Sync()
}

func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr is used before any logger exists.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(exitCode))
}
