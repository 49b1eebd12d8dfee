package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/settings"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the sorting settings",
		Long: `Show or change the sorting settings:

  auto_folder_sorting  sort a folder whenever its contents change
  sort_by_use          move visited bookmarks to the top of their folder

Both default to true. Changes apply to the next event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			cur, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), cur)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			cur, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			v, err := cur.Value(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Change one setting",
		Example: `  bmtidy settings set auto_folder_sorting false`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			patch, err := settings.ParsePatch(args[0], args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			if err := a.settings.Set(cmd.Context(), patch); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			cur, err := a.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), cur)
			return nil
		},
	})

	return cmd
}

func printSettings(w io.Writer, s settings.Settings) {
	fmt.Fprintf(w, "%s: %t\n", settings.KeyAutoFolderSorting, s.AutoFolderSorting)
	fmt.Fprintf(w, "%s: %t\n", settings.KeySortByUse, s.SortByUse)
}
