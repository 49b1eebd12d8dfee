package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/store"
)

func newAddCommand() *cobra.Command {
	var title, folder string

	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Add a bookmark",
		Long: `Add a bookmark. With automatic folder sorting on, the target folder is
re-sorted afterwards.`,
		Example: `  bmtidy add https://go.dev --title "Go" --folder 1`,
		Args:    cobra.ExactArgs(1),
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

			detach := a.watch(ctx)
			defer detach()

			if title == "" {
				title = args[0]
			}
			node, err := a.bookmarks.Create(ctx, store.CreateDetails{
				ParentID: folder,
				Title:    title,
				URL:      args[0],
			})
			if err != nil {
				return err
			}

			snap, err := a.snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (id %s).\n", node.Title, snap.Path(node), node.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "bookmark title (default: the URL)")
	cmd.Flags().StringVar(&folder, "folder", model.OtherBookmarksID, "ID of the folder to add to")

	return cmd
}
