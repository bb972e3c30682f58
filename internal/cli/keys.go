package cli

import (
	"github.com/spf13/cobra"

	"github.com/hiic/library/internal/objectstore"
)

type keysOutput struct {
	Keys      []string `json:"keys"`
	Truncated bool     `json:"truncated"`
}

// NewKeysCommand lists raw keys, one page by default.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	var prefix string
	var all bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List raw object keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := rootOpts.Open(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("prefix") {
				prefix = cfg.Namespace + "/"
			}

			var out keysOutput
			opts := objectstore.ListOptions{Prefix: prefix}
			for {
				page, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out.Keys = append(out.Keys, page.Keys()...)
				out.Truncated = page.Truncated
				if !page.Truncated || !all {
					break
				}
				opts.ContinuationToken = page.NextToken
			}
			if out.Keys == nil {
				out.Keys = []string{}
			}

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(w, out)
			}
			for _, k := range out.Keys {
				printf(w, "%s\n", k)
			}
			if out.Truncated {
				printf(w, "... more keys, use --all\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix (default: the namespace)")
	cmd.Flags().BoolVar(&all, "all", false, "follow continuation tokens")
	return cmd
}
