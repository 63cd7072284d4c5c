package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/procoachmastery/website/internal/core/store"
	"github.com/procoachmastery/website/internal/output"
)

var (
	rateLimitListReport reportFlags
	rateLimitListAll    bool
	rateLimitListForm   string
	rateLimitListClient string
	rateLimitListPrefix string
)

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rate limit windows",
	Long: `List the fixed windows held by the rate limit store.

Keys have the form <form>:<client>. Without a selector every window is listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := rateLimitListReport.parse()
		if err != nil {
			return err
		}

		query := store.RateLimitQuery{
			All:    rateLimitListAll,
			Form:   strings.ToLower(strings.TrimSpace(rateLimitListForm)),
			Client: strings.TrimSpace(rateLimitListClient),
			Prefix: strings.TrimSpace(rateLimitListPrefix),
		}
		if query.Form == "" && query.Prefix == "" && query.Client == "" {
			query.All = true
		}
		if _, err := query.KeyPrefix(); err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		entries, err := store.Lookup(cmd.Context(), st, query)
		if err != nil {
			return err
		}

		rendered, err := output.NewFormatter(format).FormatRateLimits(entries)
		if err != nil {
			return err
		}

		return rateLimitListReport.write(cmd.OutOrStdout(), format, "rate-limit.list", rendered)
	},
}

func init() {
	rateLimitListReport.register(rateLimitListCmd, "table|json|yaml|markdown")
	rateLimitListCmd.Flags().BoolVar(&rateLimitListAll, "all", false, "List all windows")
	rateLimitListCmd.Flags().StringVar(&rateLimitListForm, "form", "", "List windows for one form (contact|waitlist)")
	rateLimitListCmd.Flags().StringVar(&rateLimitListClient, "client", "", "Narrow --form to a single client address")
	rateLimitListCmd.Flags().StringVar(&rateLimitListPrefix, "prefix", "", "List windows whose key has this prefix")
}
