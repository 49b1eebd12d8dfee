package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/model"
)

func newSortCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sort [FOLDER_ID]",
		Short: "Sort a folder: subfolders first, alphabetically",
		Long: `Sort the children of a folder: subfolders first, ordered by title,
followed by bookmarks in their current order. The bookmarks bar is never
sorted. Runs even when automatic folder sorting is switched off.`,
		Example: `  bmtidy sort 2
  bmtidy sort --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if all == (len(args) == 1) {
				return errors.New("specify either a folder ID or --all")
			}

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

			s := a.sorter()
			s.Force = true

			if all {
				n, err := s.SortAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sorted %d folders.\n", n)
				return nil
			}

			folder, err := a.bookmarks.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !folder.IsFolder() {
				return fmt.Errorf("%s is a bookmark, not a folder", args[0])
			}
			switch folder.ID {
			case model.BookmarksBarID:
				fmt.Fprintln(cmd.OutOrStdout(), "The bookmarks bar is never sorted.")
				return nil
			case model.RootID:
				fmt.Fprintln(cmd.OutOrStdout(), "The root folder is never sorted; use --all.")
				return nil
			}
			if err := s.SortFolder(ctx, folder.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorted %s.\n", folder.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "sort every folder")

	return cmd
}
