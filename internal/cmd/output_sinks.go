package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procoachmastery/website/internal/output"
)

// reportFlags holds the --output-format, --out and --out-dir flags shared by
// the reporting commands.
type reportFlags struct {
	format string
	out    string
	outDir string
}

func (f *reportFlags) register(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVar(&f.format, "output-format", string(output.FormatTable), "Output format: "+formats)
	cmd.Flags().StringVar(&f.out, "out", "", "Write output to a file (default stdout)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "Write output to a directory")
}

// parse validates the flags before any work is done.
func (f *reportFlags) parse() (output.Format, error) {
	if strings.TrimSpace(f.out) != "" && strings.TrimSpace(f.outDir) != "" {
		return "", fmt.Errorf("--out and --out-dir are mutually exclusive")
	}
	return output.ParseFormat(f.format)
}

// open returns the report destination. With --out-dir the file is named
// base plus the extension of format.
func (f *reportFlags) open(w io.Writer, format output.Format, base string) (io.Writer, func() error, error) {
	path := strings.TrimSpace(f.out)
	if dir := strings.TrimSpace(f.outDir); dir != "" {
		path = filepath.Join(dir, base+"."+output.Extension(format))
	}
	if path == "" || path == "-" {
		return w, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

// write renders text to the destination with exactly one trailing newline.
func (f *reportFlags) write(w io.Writer, format output.Format, base, text string) error {
	dst, closeFn, err := f.open(w, format, base)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dst, strings.TrimRight(text, "\n"))
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}
