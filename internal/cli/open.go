package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/review"
	"github.com/nikbrunner/bmtidy/internal/search"
)

func newOpenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open QUERY...",
		Short: "Fuzzy-search bookmarks by title and open one",
		Long: `Fuzzy-search bookmark titles. A single hit is opened right away; with
several you pick one from a list. The opened bookmark is marked visited and
moved to the top of its folder.`,
		Example: `  bmtidy open go docs`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			query := strings.Join(args, " ")

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
			results := search.Rank(snap.Bookmarks, query)
			if len(results) == 0 {
				fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
				return nil
			}

			var selected model.Node
			if len(results) == 1 {
				selected = results[0].Bookmark
			} else {
				items := make([]review.Item, len(results))
				byID := make(map[string]model.Node, len(results))
				for i, r := range results {
					items[i] = review.Item{
						ID:     r.Bookmark.ID,
						Title:  r.Bookmark.Title,
						URL:    r.Bookmark.URL,
						Detail: snap.Path(r.Bookmark),
					}
					byID[r.Bookmark.ID] = r.Bookmark
				}
				picked, err := runReview(items, review.Options{Title: "Open: " + query})
				if err != nil {
					return err
				}
				if len(picked) == 0 {
					return nil
				}
				selected = byID[picked[0].ID]
			}

			fmt.Fprintf(out, "Opening: %s\n", selected.Title)
			if err := a.bookmarks.MarkVisited(ctx, selected.ID, time.Now()); err != nil {
				return err
			}
			if err := a.sorter().MoveToTop(ctx, selected.ID); err != nil {
				a.logger.Warn("move to top", "id", selected.ID, "error", err)
			}
			return openBrowser(selected.URL)
		},
	}

	return cmd
}
