package handlers

import (
	"net/http"
	"time"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/version"
)

type healthzResponse struct {
	Status  string       `json:"status"`
	Uptime  string       `json:"uptime"`
	Build   version.Info `json:"build"`
	Ledger  bool         `json:"ledger"`
	Auditor bool         `json:"auditor"`
}

// Healthz reports liveness only; the object store is probed by /readyz.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:  "ok",
			Uptime:  time.Since(d.StartTime).Round(time.Second).String(),
			Build:   d.Build,
			Ledger:  d.Ledger != nil,
			Auditor: d.AuditTrigger != nil,
		})
	}
}
