package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hiic/library/internal/domain"
	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
)

type indexResponse struct {
	Issues []domain.Issue `json:"issues"`
}

// Index assembles a fresh catalog for every request.
func Index(d deps.Deps) http.HandlerFunc {
	maxAge := d.CatalogMaxAge
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	cacheControl := fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if d.CatalogTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.CatalogTimeout)
			defer cancel()
		}

		cat, err := d.Catalog.Build(ctx)
		if err != nil {
			d.Logger.Error("catalog assembly failed", logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		w.Header().Set("Cache-Control", cacheControl)
		writeJSON(w, http.StatusOK, indexResponse{Issues: cat.Issues})
	}
}
