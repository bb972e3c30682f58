package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/objectstore"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz lists a single key to prove the object store is reachable.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if _, err := d.Store.List(ctx, objectstore.ListOptions{MaxKeys: 1}); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
