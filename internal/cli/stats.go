package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/persist"
)

// TypeCount is the record count for one view type.
type TypeCount struct {
	TypeFingerprint int32 `json:"typeFingerprint"`
	Records         int64 `json:"records"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count stored views per type fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd.Context(), func(store *persist.Store) error {
				counts, err := store.Stats(cmd.Context())
				if err != nil {
					return WrapExitError(ExitCommandError, "stats", err)
				}

				rows := make([]TypeCount, 0, len(counts))
				var total int64
				for _, tf := range slices.Sorted(maps.Keys(counts)) {
					rows = append(rows, TypeCount{TypeFingerprint: tf, Records: counts[tf]})
					total += counts[tf]
				}
				return rootOpts.formatter(cmd).Success(rows, func(w io.Writer) {
					for _, r := range rows {
						fmt.Fprintf(w, "%12s  %d\n", strconv.FormatInt(int64(r.TypeFingerprint), 10), r.Records)
					}
					fmt.Fprintf(w, "%d records, %d types\n", total, len(rows))
				})
			})
		},
	}
}
