// Package cli implements the viewcache maintenance commands over a
// persistent view store.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/viewcache/bootstrap"
	"github.com/jonwraymond/viewcache/config"
	"github.com/jonwraymond/viewcache/persist"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the viewcache CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "viewcache",
		Short: "Inspect and maintain a persistent view cache",
		Long: `Inspect and maintain the persistent store behind a view cache.

Commands read the persistent section of the configuration file, resolve the
encryption key and open the configured document store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewEvictCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))

	return cmd
}

// loadConfig reads the configured file, or the defaults without one.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	return cfg, nil
}

// withStore opens the persistent store, runs fn and tears everything down.
func (o *RootOptions) withStore(ctx context.Context, fn func(*persist.Store) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	env := bootstrap.New()
	if err := env.Init(ctx, cfg); err != nil {
		return WrapExitError(ExitCommandError, "initialize", err)
	}
	defer env.Close(ctx)

	store, err := env.OpenStore(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer store.Close()

	return fn(store)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
