package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/visit"
)

// cliTab stands in for the browser tab a visit happened in.
const cliTab = "cli"

func newVisitCommand() *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "visit URL",
		Short: "Record a page visit and move its bookmark to the top",
		Long: `Record a page visit. The bookmark matching the URL is found by trying the
exact URL, its normalized form, www and scheme variants and any redirect
target in its query, then moved directly below its folder's subfolders.

--initial gives the URL the page was first requested with, for pages that
redirected before finishing.`,
		Example: `  bmtidy visit https://go.dev/doc/
  bmtidy visit https://example.com/home --initial https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			tracker := visit.NewTracker(a.finder(), a.sorter(), a.settings, a.logger)
			if initial != "" {
				tracker.Loading(cliTab, initial)
			}
			tracker.Loading(cliTab, args[0])

			node := tracker.Complete(ctx, cliTab, args[0])
			if node == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No bookmark moved for %s\n", args[0])
				return nil
			}
			if err := a.bookmarks.MarkVisited(ctx, node.ID, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to the top of its folder.\n", node.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "URL the page was first requested with")

	return cmd
}
