package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	extended      bool
	versionFormat string
)

type versionReport struct {
	Binary    string `json:"binary" yaml:"binary"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	Go        string `json:"go,omitempty" yaml:"go,omitempty"`
	Gofulmen  string `json:"gofulmen,omitempty" yaml:"gofulmen,omitempty"`
	Crucible  string `json:"crucible,omitempty" yaml:"crucible,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go, Gofulmen and Crucible details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := buildVersionReport(GetAppIdentity().BinaryName, extended)
		return writeVersion(cmd.OutOrStdout(), versionFormat, report)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
	versionCmd.Flags().StringVar(&versionFormat, "output-format", "text", "output format: text, json, yaml")
}

func buildVersionReport(binary string, full bool) versionReport {
	report := versionReport{Binary: binary, Version: versionInfo.Version}
	if !full {
		return report
	}
	v := crucible.GetVersion()
	report.Commit = versionInfo.Commit
	report.BuildDate = versionInfo.BuildDate
	report.Go = runtime.Version()
	report.Gofulmen = v.Gofulmen
	report.Crucible = v.Crucible
	return report
}

func writeVersion(w io.Writer, format string, report versionReport) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		return yaml.NewEncoder(w).Encode(report)
	case "", "text":
	default:
		return fmt.Errorf("unsupported output format %q (text, json, yaml)", format)
	}

	fmt.Fprintf(w, "%s %s\n", report.Binary, report.Version)
	if report.Go == "" {
		return nil
	}
	fmt.Fprintf(w, "Commit: %s\nBuilt: %s\nGo: %s\n\n", report.Commit, report.BuildDate, report.Go)
	fmt.Fprintf(w, "Gofulmen: %s\nCrucible: %s\n", report.Gofulmen, report.Crucible)
	return nil
}
