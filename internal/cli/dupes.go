package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/duplicates"
	"github.com/nikbrunner/bmtidy/internal/review"
)

// runReview shows the interactive review list. Replaced in tests.
var runReview = review.Run

func newDupesCommand() *cobra.Command {
	var removeAll, interactive bool

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find bookmarks with the same URL",
		Long: `Find bookmarks whose URLs are equal ignoring case.

Each group lists every copy with its folder path. --remove-all keeps the
first copy of each group and removes the rest; --review lets you pick which
copies to remove.`,
		Example: `  bmtidy dupes
  bmtidy dupes --review`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			snap, err := a.snapshot(ctx)
			if err != nil {
				return err
			}
			groups := duplicates.Detect(snap.Bookmarks)
			if len(groups) == 0 {
				fmt.Fprintln(out, "No duplicate bookmarks found.")
				return nil
			}

			fmt.Fprintf(out, "Found %d duplicate groups (%d bookmarks):\n\n", len(groups), duplicates.Count(groups))
			for _, g := range groups {
				fmt.Fprintf(out, "%s (%d copies)\n", g.URL, len(g.Members))
				for _, m := range g.Members {
					fmt.Fprintf(out, "  - %s [%s]\n", m.Title, snap.Path(m))
				}
				fmt.Fprintln(out)
			}

			var ids []string
			switch {
			case removeAll:
				ids = duplicates.Redundant(groups)
			case interactive:
				var items []review.Item
				for _, g := range groups {
					for _, m := range g.Members[1:] {
						items = append(items, review.Item{
							ID:     m.ID,
							Title:  m.Title,
							URL:    m.URL,
							Detail: snap.Path(m),
							Group:  g.URL,
						})
					}
				}
				selected, err := runReview(items, review.Options{
					Title:     "Remove duplicates (first copy of each group is kept)",
					Multi:     true,
					Preselect: true,
				})
				if err != nil {
					return err
				}
				for _, it := range selected {
					ids = append(ids, it.ID)
				}
			default:
				return nil
			}

			removed := a.removeAll(ctx, ids)
			fmt.Fprintf(out, "Removed %d duplicate bookmarks.\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeAll, "remove-all", false, "remove every copy except the first of each group")
	cmd.Flags().BoolVar(&interactive, "review", false, "choose which copies to remove")
	cmd.MarkFlagsMutuallyExclusive("remove-all", "review")

	return cmd
}
