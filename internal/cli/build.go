package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/RustWorks/printpdf/internal/config"
	"github.com/juju/errgo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type buildOptions struct {
	outDir   string
	compress bool
	repair   bool
	strict   bool
	jobs     int
}

var buildOpts = buildOptions{}

var buildCmd = &cobra.Command{
	Use:   "build [description...]",
	Short: "Build PDF files from descriptions",
	Long: `Build one PDF file per description. Files ending in .json or .jsonc are
read as JSON with comments, everything else as YAML.

The output is named after the description with a .pdf extension and is
written next to it unless --out-dir is given.

Conformance:
	Violations of the requested standard are logged as warnings. With
	--repair, layers are merged and RGB colors converted to CMYK where the
	standard requires it. With --strict, remaining violations fail the
	build.

Examples:
	printpdf build brochure.yaml
	printpdf build --repair --strict --out-dir out *.yaml
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr())

		g, ctx := errgroup.WithContext(cmd.Context())
		if buildOpts.jobs > 0 {
			g.SetLimit(buildOpts.jobs)
		}

		for _, path := range args {
			path := path
			g.Go(func() error {
				out, err := buildFile(ctx, path, buildOpts, logger)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOpts.outDir, "out-dir", "o", "", "Directory for the generated files")
	buildCmd.Flags().BoolVar(&buildOpts.compress, "compress", false, "Compress content streams even if the description does not ask for it")
	buildCmd.Flags().BoolVar(&buildOpts.repair, "repair", false, "Repair conformance violations where possible")
	buildCmd.Flags().BoolVar(&buildOpts.strict, "strict", false, "Fail when conformance violations remain")
	buildCmd.Flags().IntVarP(&buildOpts.jobs, "jobs", "j", 4, "Number of documents built at the same time (0 is unlimited)")
}

// outputPath is the pdf file written for the description at path.
func outputPath(path, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".pdf"
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(outDir, base)
}

func buildFile(ctx context.Context, path string, opts buildOptions, logger *slog.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger = logger.With("description", path)

	plan, err := config.Load(path)
	if err != nil {
		return "", err
	}
	if opts.compress {
		plan.Compress = true
	}

	doc, err := plan.Build(logger)
	if err != nil {
		return "", err
	}

	if opts.repair {
		err = doc.RepairErrors(plan.Conformance)
	} else {
		err = doc.CheckForErrors()
	}
	if err != nil {
		if opts.strict {
			return "", errgo.NoteMask(err, path, errgo.Any)
		}
		logger.Warn("conformance violations", "conformance", plan.Conformance.String(), "err", err)
	}

	out := outputPath(path, opts.outDir)
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return "", errgo.Mask(err, errgo.Any)
		}
	}

	if err := writeFile(out, doc.Save); err != nil {
		return "", err
	}

	logger.Info("wrote document", "out", out, "pages", doc.PageCount())
	return out, nil
}

// writeFile creates path with the output of write. Nothing is left
// behind when writing fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}

	w := bufio.NewWriter(f)
	err = write(w)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return errgo.NoteMask(err, path, errgo.Any)
	}
	return nil
}
