// Package cli implements libraryctl, the operator tool for inspecting the
// library bucket the way the API sees it.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hiic/library/internal/app"
	"github.com/hiic/library/internal/config"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
	"github.com/hiic/library/internal/version"
)

// Opener returns the store and configuration commands operate on.
type Opener func(ctx context.Context) (objectstore.Store, *config.Config, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	EnvFile string
	Verbose bool

	Open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the libraryctl root command. A nil open uses the
// environment configuration.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{Open: open}
	if opts.Open == nil {
		opts.Open = openFromEnv
	}

	cmd := &cobra.Command{
		Use:     "libraryctl",
		Short:   "Inspect the library catalog and its object store",
		Version: version.String("libraryctl"),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.EnvFile != "" {
				if err := godotenv.Load(opts.EnvFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file first")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log skipped records and timings to stderr")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// openFromEnv loads config the same way library-api does. config.Load panics
// on invalid settings; a CLI reports that as an error instead.
func openFromEnv(ctx context.Context) (store objectstore.Store, cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	cfg = config.Load()
	store, err = app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func (o *RootOptions) logger() logger.Logger {
	if o.Verbose {
		return logger.New("debug", true)
	}
	return logger.Nop()
}
