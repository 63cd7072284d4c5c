package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core/store"
	"github.com/procoachmastery/website/internal/observability"
)

var rateLimitStoreURL string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Manage persisted rate limit state",
	Long: `Inspect and clear the fixed windows kept by the rate limit store.

Windows are keyed "<form>:<client>". Only the redis driver is shared with a
running server; the memory driver is private to each process.`,
}

func init() {
	rateLimitCmd.PersistentFlags().StringVar(&rateLimitStoreURL, "store-url", "", "redis URL to inspect instead of the configured store")
	rateLimitCmd.AddCommand(rateLimitListCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

// openStore opens the configured rate limit store, or the redis instance
// named by --store-url.
func openStore(ctx context.Context) (store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, storeOverride(cfg.Store, rateLimitStoreURL))
}

func storeOverride(cfg config.StoreConfig, url string) config.StoreConfig {
	if url = strings.TrimSpace(url); url != "" {
		cfg.Driver = store.DriverRedis
		cfg.URL = url
		cfg.Addr = ""
	}
	if cfg.Driver == store.DriverMemory && observability.CLILogger != nil {
		observability.CLILogger.Warn("store.driver is memory; rate limit state lives inside the running server and is not visible here")
	}
	return cfg
}
