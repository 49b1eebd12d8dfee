package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/exporter"
	"github.com/nikbrunner/bmtidy/internal/importer"
	"github.com/nikbrunner/bmtidy/internal/tree"
)

func newImportCommand() *cobra.Command {
	var folder string
	var allowDuplicates bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import bookmarks from a Netscape bookmark HTML file",
		Long: `Import bookmarks from a browser export (Netscape bookmark HTML).

The toolbar folder is merged into the bookmarks bar; other top-level folders
named like a well-known folder are merged into it. Bookmarks whose URL is
already stored are skipped unless --allow-duplicates is given.`,
		Example: `  bmtidy import ~/Downloads/bookmarks.html`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			entries, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			detach := a.watch(ctx)
			defer detach()

			stats, err := importer.Import(ctx, a.bookmarks, entries, importer.Options{
				ParentID:     folder,
				SkipExisting: !allowDuplicates,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks, %d folders", stats.Bookmarks, stats.Folders)
			if stats.Skipped > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", stats.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "ID of the folder receiving top-level entries (default: Other bookmarks)")
	cmd.Flags().BoolVar(&allowDuplicates, "allow-duplicates", false, "import bookmarks whose URL already exists")

	return cmd
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export bookmarks as Netscape bookmark HTML",
		Long: `Export every bookmark as Netscape bookmark HTML, readable by any browser.
Defaults to ~/Downloads/bookmarks-export-YYYY-MM-DD.html.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			roots, err := a.bookmarks.GetTree(ctx)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(roots)), 0644); err != nil {
				return fmt.Errorf("write %s: %w", outputPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(tree.Flatten(roots).Bookmarks), outputPath)
			return nil
		},
	}

	return cmd
}
