package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/juju/errgo"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "printpdf",
	Short: "Build print-ready PDF documents from YAML or JSONC descriptions",
	Long: `printpdf builds PDF documents from declarative descriptions and inspects
existing PDF files.

A description names the document metadata, the conformance standard
(PDF/A or PDF/X), fonts and a list of pages. Each page holds layers of
text, lines and SVG images. Coordinates are millimeters from the bottom
left corner of the page.

Examples:
	# Build brochure.pdf next to the description
	printpdf build brochure.yaml

	# Build several documents, two at a time
	printpdf build --jobs 2 --out-dir out a.yaml b.jsonc

	# Show the structure of a file
	printpdf inspect brochure.pdf

	# Print build info
	printpdf version`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every step to stderr")
}

// newLogger writes text logs to w, at debug level with --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if debug {
			fmt.Fprintln(os.Stderr, errgo.Details(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
