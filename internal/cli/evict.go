package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/persist"
)

// EvictResult reports what an eviction removed.
type EvictResult struct {
	Evicted int `json:"evicted"`
}

// NewEvictCommand creates the evict command.
func NewEvictCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id     int64
		typeFP int32
	)

	cmd := &cobra.Command{
		Use:   "evict",
		Short: "Delete one stored view or every view of a type",
		Long: `Delete stored views.

--id removes one record and fails when it does not exist.
--type-fingerprint removes every record of that view type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byID := cmd.Flags().Changed("id")

			return rootOpts.withStore(cmd.Context(), func(store *persist.Store) error {
				var res EvictResult
				switch {
				case byID:
					err := store.EvictID(cmd.Context(), id)
					if errors.Is(err, persist.ErrNotFound) {
						return WrapExitError(ExitFailure, "evict", err)
					}
					if err != nil {
						return WrapExitError(ExitCommandError, "evict", err)
					}
					res.Evicted = 1
				default:
					n, err := store.EvictTypeFingerprint(cmd.Context(), typeFP)
					if err != nil {
						return WrapExitError(ExitCommandError, "evict", err)
					}
					res.Evicted = n
				}
				return rootOpts.formatter(cmd).Success(res, func(w io.Writer) {
					fmt.Fprintf(w, "evicted %d records\n", res.Evicted)
				})
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "record fingerprint")
	cmd.Flags().Int32Var(&typeFP, "type-fingerprint", 0, "view type fingerprint")
	cmd.MarkFlagsMutuallyExclusive("id", "type-fingerprint")
	cmd.MarkFlagsOneRequired("id", "type-fingerprint")
	return cmd
}
