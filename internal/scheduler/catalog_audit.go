package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hiic/library/internal/catalog"
	"github.com/hiic/library/internal/logger"
	redisstore "github.com/hiic/library/internal/store/redis"
)

// Builder assembles a catalog snapshot.
type Builder interface {
	Build(ctx context.Context) (*catalog.Catalog, error)
}

// Recorder persists audit results.
type Recorder interface {
	Record(ctx context.Context, report redisstore.AuditReport) error
}

// CatalogAuditor periodically assembles the catalog off the request path
// and records which metadata records are being skipped. It never serves
// catalog requests.
type CatalogAuditor struct {
	builder       Builder
	recorder      Recorder // nil => log only
	logger        logger.Logger
	interval      time.Duration // <= 0 => manual triggers only
	timeout       time.Duration
	mu            sync.Mutex
	started       bool
	stopped       bool
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogAuditor creates an auditor. manualTrigger should be buffered
// with capacity 1 so a pending request coalesces further ones.
func NewCatalogAuditor(
	builder Builder,
	recorder Recorder,
	log logger.Logger,
	interval time.Duration,
	timeout time.Duration,
	manualTrigger chan struct{},
) *CatalogAuditor {
	return &CatalogAuditor{
		builder:       builder,
		recorder:      recorder,
		logger:        log.With(logger.String("component", "auditor")),
		interval:      interval,
		timeout:       timeout,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs one audit immediately, then on every tick or manual trigger.
// It returns at once; audits happen on a background goroutine.
// Calls after the first Start, or after Stop, do nothing.
func (ca *CatalogAuditor) Start(ctx context.Context) {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	if ca.started || ca.stopped {
		return
	}
	ca.started = true

	go func() {
		defer close(ca.done)

		var tick <-chan time.Time
		if ca.interval > 0 {
			ticker := time.NewTicker(ca.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		ca.runLogged(ctx)
		for {
			select {
			case <-tick:
				ca.runLogged(ctx)
			case <-ca.manualTrigger:
				ca.logger.Info("manual audit triggered")
				ca.runLogged(ctx)
			case <-ca.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the auditor and waits for an in-flight audit to finish. It is
// safe to call more than once, and before Start.
func (ca *CatalogAuditor) Stop() {
	ca.mu.Lock()
	if !ca.stopped {
		ca.stopped = true
		close(ca.stopCh)
	}
	started := ca.started
	ca.mu.Unlock()

	if started {
		<-ca.done
	}
}

func (ca *CatalogAuditor) runLogged(ctx context.Context) {
	if _, err := ca.Audit(ctx); err != nil {
		ca.logger.Error("catalog audit failed", logger.Error(err))
	}
}

// Audit performs one pass and returns its summary.
func (ca *CatalogAuditor) Audit(ctx context.Context) (*redisstore.AuditSummary, error) {
	if ca.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ca.timeout)
		defer cancel()
	}

	cat, err := ca.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	summary := redisstore.AuditSummary{
		At:        cat.BuiltAt.UTC(),
		Listed:    cat.Listed,
		Issues:    len(cat.Issues),
		Skipped:   len(cat.Skipped),
		Truncated: cat.Truncated,
		Took:      cat.Took,
	}

	ca.logger.Info("catalog audited",
		logger.Int("listed", summary.Listed),
		logger.Int("issues", summary.Issues),
		logger.Int("skipped", summary.Skipped),
		logger.Strings("sources", cat.Sources()),
		logger.Bool("truncated", summary.Truncated),
		logger.Duration("took", summary.Took))
	if summary.Truncated {
		ca.logger.Warn("catalog listing was truncated, some issues are not visible")
	}

	if ca.recorder != nil {
		if err := ca.recorder.Record(ctx, redisstore.AuditReport{Summary: summary, Skipped: cat.Skipped}); err != nil {
			// The audit itself succeeded; the ledger is best effort.
			ca.logger.Warn("failed to record audit", logger.Error(err))
		}
	}
	return &summary, nil
}
