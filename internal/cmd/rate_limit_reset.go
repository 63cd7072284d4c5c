package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/procoachmastery/website/internal/core/store"
	"github.com/procoachmastery/website/internal/output"
)

var (
	rateLimitResetAll    bool
	rateLimitResetForm   string
	rateLimitResetClient string
	rateLimitResetPrefix string
	rateLimitResetYes    bool
	rateLimitResetDryRun bool
	rateLimitResetReport reportFlags
)

// resetResult reports what a reset matched and removed.
type resetResult struct {
	Prefix  string `json:"prefix" yaml:"prefix"`
	Matched int    `json:"matched" yaml:"matched"`
	Deleted int64  `json:"deleted" yaml:"deleted"`
	DryRun  bool   `json:"dry_run" yaml:"dry_run"`
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored rate limit windows",
	Long: `Delete fixed windows from the rate limit store so blocked clients can
submit again before their window ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := rateLimitResetReport.parse()
		if err != nil {
			return err
		}

		query := store.RateLimitQuery{
			All:    rateLimitResetAll,
			Form:   strings.ToLower(strings.TrimSpace(rateLimitResetForm)),
			Client: strings.TrimSpace(rateLimitResetClient),
			Prefix: strings.TrimSpace(rateLimitResetPrefix),
		}
		prefix, err := query.KeyPrefix()
		if err != nil {
			return err
		}

		if query.All && !rateLimitResetYes && !rateLimitResetDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		matched, err := store.Lookup(cmd.Context(), st, query)
		if err != nil {
			return err
		}

		result := resetResult{Prefix: prefix, Matched: len(matched), DryRun: rateLimitResetDryRun}
		if !rateLimitResetDryRun {
			result.Deleted, err = store.Clear(cmd.Context(), st, query)
			if err != nil {
				return err
			}
		}

		dst, closeFn, err := rateLimitResetReport.open(cmd.OutOrStdout(), format, "rate-limit.reset")
		if err != nil {
			return err
		}
		defer closeFn() //nolint:errcheck
		return writeRateLimitResetResult(format, dst, result)
	},
}

func writeRateLimitResetResult(format output.Format, w io.Writer, result resetResult) error {
	switch format {
	case output.FormatJSON:
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	case output.FormatYAML:
		payload, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		_, err = w.Write(payload)
		return err
	}

	if result.DryRun {
		_, err := fmt.Fprintf(w, "Would delete %d rate limit window(s)\n", result.Matched)
		return err
	}
	_, err := fmt.Fprintf(w, "Deleted %d/%d rate limit window(s)\n", result.Deleted, result.Matched)
	return err
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetAll, "all", false, "Reset every window")
	rateLimitResetCmd.Flags().StringVar(&rateLimitResetForm, "form", "", "Reset windows for one form (contact|waitlist)")
	rateLimitResetCmd.Flags().StringVar(&rateLimitResetClient, "client", "", "Narrow --form to a single client address")
	rateLimitResetCmd.Flags().StringVar(&rateLimitResetPrefix, "prefix", "", "Reset windows whose key has this prefix")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetYes, "yes", false, "Confirm destructive reset")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetDryRun, "dry-run", false, "Show what would be deleted")
	rateLimitResetReport.register(rateLimitResetCmd, "table|json|yaml")
}
