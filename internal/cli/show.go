package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/persist"
)

// ShowResult is a decoded record.
type ShowResult struct {
	FingerprintID   int64           `json:"fingerprintId"`
	TypeFingerprint int32           `json:"typeFingerprint"`
	View            json.RawMessage `json:"view"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored view with its payload decoded",
		Long: `Print one stored view. The payload is decrypted and decompressed with the
configured pipeline and printed as JSON.

Examples:
  viewcache show --config viewcache.yaml --id -4211862098143518235`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd.Context(), func(store *persist.Store) error {
				rec, raw, err := store.Payload(cmd.Context(), id)
				if errors.Is(err, persist.ErrNotFound) {
					return WrapExitError(ExitFailure, "show", err)
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "show", err)
				}
				res := ShowResult{FingerprintID: rec.ID, TypeFingerprint: rec.TypeFingerprint, View: raw}
				return rootOpts.formatter(cmd).Success(res, func(w io.Writer) {
					fmt.Fprintf(w, "fingerprint:      %d\n", res.FingerprintID)
					fmt.Fprintf(w, "type fingerprint: %d\n", res.TypeFingerprint)
					fmt.Fprintf(w, "%s\n", res.View)
				})
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "record fingerprint")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
