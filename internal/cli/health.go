package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/health"
	"github.com/jonwraymond/viewcache/persist"
)

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the persistent store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd.Context(), func(store *persist.Store) error {
				agg := health.NewAggregator()
				agg.Register("store", health.NewStoreChecker("store", store))
				results := agg.CheckAll(cmd.Context())
				overall := health.Overall(results)

				out := map[string]any{"status": overall, "checks": results}
				err := rootOpts.formatter(cmd).Success(out, func(w io.Writer) {
					for _, name := range agg.CheckerNames() {
						r := results[name]
						fmt.Fprintf(w, "%-8s %-9s %s (%s)\n", name, r.Status, r.Message, r.Duration)
					}
				})
				if err != nil {
					return err
				}
				if overall == health.StatusUnhealthy {
					return NewExitError(ExitFailure, "store unhealthy")
				}
				return nil
			})
		},
	}
}
