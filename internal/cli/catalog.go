package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hiic/library/internal/app"
	"github.com/hiic/library/internal/domain"
)

type catalogOutput struct {
	Issues    []domain.Issue      `json:"issues"`
	Skipped   []domain.SkippedKey `json:"skipped"`
	Listed    int                 `json:"listed"`
	Truncated bool                `json:"truncated"`
	Took      string              `json:"took"`
}

// NewCatalogCommand assembles the catalog exactly as GET /index does and
// also reports what was skipped.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Assemble the catalog and report skipped records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := rootOpts.Open(cmd.Context())
			if err != nil {
				return err
			}
			cat, err := app.NewAssembler(store, cfg, rootOpts.logger()).Build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				skipped := cat.Skipped
				if skipped == nil {
					skipped = []domain.SkippedKey{}
				}
				return writeJSON(out, catalogOutput{
					Issues:    cat.Newest(),
					Skipped:   skipped,
					Listed:    cat.Listed,
					Truncated: cat.Truncated,
					Took:      cat.Took.Round(time.Millisecond).String(),
				})
			}

			tw := newTable(out)
			printf(tw, "SOURCE\tISSUE\tPUBLISHED\tTITLE\n")
			for _, issue := range cat.Newest() {
				printf(tw, "%s\t%s\t%s\t%s\n", issue.SourceID, issue.ID, issue.PublishDate, issue.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, s := range cat.Skipped {
				printf(out, "skipped %s (%s) %s\n", s.Key, s.Reason, s.Detail)
			}
			printf(out, "%d issues, %d skipped, %d keys listed", len(cat.Issues), len(cat.Skipped), cat.Listed)
			if cat.Truncated {
				printf(out, " (listing truncated)")
			}
			printf(out, "\n")
			return nil
		},
	}
}
