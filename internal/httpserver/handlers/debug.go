package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
	redisstore "github.com/hiic/library/internal/store/redis"
)

// debugResponse is an operator aid; its shape is not a stable contract.
type debugResponse struct {
	Objects   []string                 `json:"objects"`
	Truncated bool                     `json:"truncated"`
	LastAudit *redisstore.AuditSummary `json:"lastAudit,omitempty"`
	Skipped   []domain.SkippedKey      `json:"skipped,omitempty"`
	LedgerErr string                   `json:"ledgerError,omitempty"`
}

// Debug lists the first page of raw keys in the whole store.
func Debug(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := d.Store.List(r.Context(), objectstore.ListOptions{})
		if err != nil {
			d.Logger.Error("debug listing failed", logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		resp := debugResponse{Objects: page.Keys(), Truncated: page.Truncated}
		if d.Ledger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if resp.LastAudit, err = d.Ledger.LastAudit(ctx); err == nil {
				resp.Skipped, err = d.Ledger.Skipped(ctx)
			}
			if err != nil {
				resp.LedgerErr = err.Error()
			}
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}
