// Package catalog builds the library catalog from the metadata records in
// the object store. Every Build is a fresh snapshot of one listing pass.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
)

const (
	// DefaultConcurrency bounds in-flight metadata fetches.
	DefaultConcurrency = 16
	// maxMetaBytes caps a single meta.json read.
	maxMetaBytes = 1 << 20
)

// Options configures an Assembler.
type Options struct {
	Namespace   string // first key segment, ex: "library"
	Concurrency int    // max in-flight fetches, <= 0 => DefaultConcurrency
	PageSize    int32  // keys per listing call, <= 0 => store default
	AllPages    bool   // follow continuation tokens; false => first page only
}

// Catalog is one assembled snapshot.
type Catalog struct {
	Issues  []domain.Issue
	Skipped []domain.SkippedKey
	// Listed is the number of keys seen under the namespace.
	Listed int
	// Truncated is true when more keys existed than were listed.
	Truncated bool
	BuiltAt   time.Time
	Took      time.Duration
}

// Assembler lists, fetches and parses metadata records.
type Assembler struct {
	store  objectstore.Store
	opts   Options
	logger logger.Logger
	now    func() time.Time
}

func NewAssembler(store objectstore.Store, opts Options, log logger.Logger) *Assembler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Assembler{
		store:  store,
		opts:   opts,
		logger: log,
		now:    time.Now,
	}
}

// Prefix is the listing prefix for the namespace.
func (a *Assembler) Prefix() string {
	return a.opts.Namespace + "/"
}

// Build assembles the catalog. Only a failed listing (or a cancelled
// context) is an error; unusable records end up in Catalog.Skipped.
func (a *Assembler) Build(ctx context.Context) (*Catalog, error) {
	start := a.now()

	keys, listed, truncated, err := a.metaKeys(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ParseResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			results[i] = a.fetchAndParse(gctx, key)
			return nil
		})
	}
	_ = g.Wait()

	// Fetches abandoned by cancellation are not skips.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog build cancelled: %w", err)
	}

	cat := &Catalog{
		Issues:    make([]domain.Issue, 0, len(keys)),
		Listed:    listed,
		Truncated: truncated,
		BuiltAt:   start,
	}
	for _, res := range results {
		switch r := res.(type) {
		case domain.ParsedIssue:
			cat.Issues = append(cat.Issues, r.Issue)
		case domain.SkippedKey:
			cat.Skipped = append(cat.Skipped, r)
			a.logger.Warn("skipping metadata record",
				logger.String("key", r.Key),
				logger.String("reason", string(r.Reason)),
				logger.String("detail", r.Detail))
		}
	}
	cat.Took = a.now().Sub(start)

	a.logger.Debug("catalog assembled",
		logger.Int("listed", cat.Listed),
		logger.Int("candidates", len(keys)),
		logger.Int("issues", len(cat.Issues)),
		logger.Int("skipped", len(cat.Skipped)),
		logger.Bool("truncated", cat.Truncated),
		logger.Duration("took", cat.Took))

	return cat, nil
}

// metaKeys lists the namespace and keeps keys whose filename is meta.json.
func (a *Assembler) metaKeys(ctx context.Context) (keys []string, listed int, truncated bool, err error) {
	opts := objectstore.ListOptions{Prefix: a.Prefix(), MaxKeys: a.opts.PageSize}
	for {
		page, err := a.store.List(ctx, opts)
		if err != nil {
			return nil, 0, false, fmt.Errorf("list %s: %w", opts.Prefix, err)
		}
		listed += len(page.Objects)
		for _, o := range page.Objects {
			if domain.IsMetaKey(o.Key) {
				keys = append(keys, o.Key)
			}
		}
		if !page.Truncated {
			return keys, listed, false, nil
		}
		if !a.opts.AllPages || page.NextToken == "" {
			return keys, listed, true, nil
		}
		opts.ContinuationToken = page.NextToken
	}
}

func (a *Assembler) fetchAndParse(ctx context.Context, key string) domain.ParseResult {
	data, err := a.fetch(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return domain.Skip(key, domain.SkipMissingObject, err)
		}
		return domain.Skip(key, domain.SkipFetchFailed, err)
	}
	return domain.ParseIssue(a.opts.Namespace, key, data)
}

func (a *Assembler) fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.store.Get(ctx, key, objectstore.GetOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(io.LimitReader(obj.Body, maxMetaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) > maxMetaBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", key, maxMetaBytes)
	}
	return data, nil
}
