package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/objectstore"
)

type assetStatus struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}

type checkOutput struct {
	Key      string             `json:"key"`
	Issue    *domain.Issue      `json:"issue,omitempty"`
	Skipped  *domain.SkippedKey `json:"skipped,omitempty"`
	Cover    *assetStatus       `json:"cover,omitempty"`
	Document *assetStatus       `json:"document,omitempty"`
}

// ErrCheckFailed is returned when the record would be skipped.
var ErrCheckFailed = errors.New("record is not usable")

// NewCheckCommand runs one meta.json key through the parser and probes the
// sibling cover and document.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <meta-key>",
		Short: "Check that a metadata record parses and its assets exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := rootOpts.Open(cmd.Context())
			if err != nil {
				return err
			}
			out := check(cmd.Context(), store, cfg.Namespace, args[0])

			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if err := writeJSON(w, out); err != nil {
					return err
				}
			} else {
				printCheck(w, out)
			}
			if out.Skipped != nil {
				return ErrCheckFailed
			}
			return nil
		},
	}
}

func check(ctx context.Context, store objectstore.Store, namespace, key string) checkOutput {
	out := checkOutput{Key: key}

	var res domain.ParseResult
	data, err := readObject(ctx, store, key)
	switch {
	case errors.Is(err, objectstore.ErrNotFound):
		res = domain.Skip(key, domain.SkipMissingObject, err)
	case err != nil:
		res = domain.Skip(key, domain.SkipFetchFailed, err)
	default:
		res = domain.ParseIssue(namespace, key, data)
	}

	switch r := res.(type) {
	case domain.ParsedIssue:
		out.Issue = &r.Issue
		out.Cover = probe(ctx, store, r.Issue.Cover)
		out.Document = probe(ctx, store, r.Issue.PDFURL)
	case domain.SkippedKey:
		out.Skipped = &r
	}
	return out
}

func readObject(ctx context.Context, store objectstore.Store, key string) ([]byte, error) {
	obj, err := store.Get(ctx, key, objectstore.GetOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()
	return io.ReadAll(obj.Body)
}

// probe fetches the first byte only.
func probe(ctx context.Context, store objectstore.Store, key string) *assetStatus {
	st := &assetStatus{Key: key}
	obj, err := store.Get(ctx, key, objectstore.GetOptions{Range: &objectstore.ByteRange{Start: 0, End: 0}})
	switch {
	case err == nil:
		_ = obj.Body.Close()
		st.Exists = true
	case errors.Is(err, objectstore.ErrInvalidRange):
		// Empty object.
		st.Exists = true
	case !errors.Is(err, objectstore.ErrNotFound):
		st.Error = err.Error()
	}
	return st
}

func printCheck(w io.Writer, out checkOutput) {
	if out.Skipped != nil {
		printf(w, "✗ %s skipped: %s", out.Key, out.Skipped.Reason)
		if out.Skipped.Detail != "" {
			printf(w, " (%s)", out.Skipped.Detail)
		}
		printf(w, "\n")
		return
	}
	printf(w, "✓ %s/%s %q published %s\n", out.Issue.SourceID, out.Issue.ID, out.Issue.Title, out.Issue.PublishDate)
	for _, a := range []*assetStatus{out.Cover, out.Document} {
		mark := "✓"
		if !a.Exists {
			mark = "✗"
		}
		detail := ""
		if a.Error != "" {
			detail = fmt.Sprintf(" (%s)", a.Error)
		}
		printf(w, "  %s %s%s\n", mark, a.Key, detail)
	}
}
