package cli

import (
	"fmt"
	"io"

	"github.com/RustWorks/printpdf/pdf"
	"github.com/fatih/color"
	"github.com/juju/errgo"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.pdf]",
	Short: "Print the structure of a PDF file",
	Long: `Print the header version, the trailer entries, the document
information and the page sizes of a PDF file.

Examples:
	printpdf inspect brochure.pdf
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := pdf.Open(args[0])
		if err != nil {
			return errgo.NoteMask(err, args[0], errgo.Any)
		}
		defer file.Close()

		printFile(cmd.OutOrStdout(), args[0], file)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func printFile(w io.Writer, name string, file *pdf.File) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "FILE: %s\n", name)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Version: %s\n", file.Version())
	fmt.Fprintf(w, "Objects: %d\n", file.Len())
	fmt.Fprintf(w, "Root:    %v\n", file.Root)
	if file.Info.ObjectNumber != 0 {
		fmt.Fprintf(w, "Info:    %v\n", file.Info)
	}
	if len(file.ID) == 2 {
		first, _ := file.ID[0].(pdf.String)
		second, _ := file.ID[1].(pdf.String)
		fmt.Fprintf(w, "ID:      %s %s\n", first, second)
	}

	if info, ok := file.Get(file.Info).(pdf.Dictionary); ok && file.Info.ObjectNumber != 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Information:")
		for _, key := range []pdf.Name{"Title", "Author", "Subject", "Creator", "Producer", "GTS_PDFXVersion"} {
			switch value := info[key].(type) {
			case pdf.String:
				fmt.Fprintf(w, "  %-16s %s\n", key, string(value))
			case pdf.Name:
				fmt.Fprintf(w, "  %-16s %s\n", key, string(value))
			}
		}
	}

	pages := collectPages(file)
	fmt.Fprintln(w)
	bold.Fprintf(w, "Pages: %d\n", len(pages))
	for i, page := range pages {
		fmt.Fprintf(w, "  %d: %s\n", i+1, mediaBox(file, page))
	}
	fmt.Fprintln(w)
}

// collectPages walks the page tree (§7.7.3) in document order.
func collectPages(file *pdf.File) []pdf.Dictionary {
	catalog, ok := file.Get(file.Root).(pdf.Dictionary)
	if !ok {
		return nil
	}
	root, ok := catalog[pdf.Name("Pages")].(pdf.ObjectReference)
	if !ok {
		return nil
	}

	var pages []pdf.Dictionary
	seen := map[pdf.ObjectReference]bool{}
	var walk func(ref pdf.ObjectReference)
	walk = func(ref pdf.ObjectReference) {
		if seen[ref] {
			return
		}
		seen[ref] = true

		node, ok := file.Get(ref).(pdf.Dictionary)
		if !ok {
			return
		}
		if node[pdf.Name("Type")] == pdf.Name("Page") {
			pages = append(pages, node)
			return
		}
		kids, _ := node[pdf.Name("Kids")].(pdf.Array)
		for _, kid := range kids {
			if kidRef, ok := kid.(pdf.ObjectReference); ok {
				walk(kidRef)
			}
		}
	}
	walk(root)
	return pages
}

// mediaBox formats the page size in points and millimeters.
func mediaBox(file *pdf.File, page pdf.Dictionary) string {
	box := page[pdf.Name("MediaBox")]
	if ref, ok := box.(pdf.ObjectReference); ok {
		box = file.Get(ref)
	}
	array, ok := box.(pdf.Array)
	if !ok || len(array) != 4 {
		return "no media box"
	}

	values := make([]float64, 4)
	for i, v := range array {
		switch n := v.(type) {
		case pdf.Integer:
			values[i] = float64(n)
		case pdf.Real:
			values[i] = float64(n)
		}
	}
	width := values[2] - values[0]
	height := values[3] - values[1]
	return fmt.Sprintf("%.2f x %.2f pt (%.1f x %.1f mm)", width, height, width*25.4/72, height*25.4/72)
}
