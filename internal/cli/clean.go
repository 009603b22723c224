package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/persist"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete every stored view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "clean deletes every stored view; pass --yes to confirm")
			}
			return rootOpts.withStore(cmd.Context(), func(store *persist.Store) error {
				if err := store.Clean(cmd.Context()); err != nil {
					return WrapExitError(ExitCommandError, "clean", err)
				}
				return rootOpts.formatter(cmd).Success(nil, func(w io.Writer) {
					fmt.Fprintln(w, "cleaned")
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
