package handlers

import (
	"net/http"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/logger"
	"github.com/hiic/library/internal/utils"
)

// Audit queues a catalog audit. At most one request is queued at a time.
func Audit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remote := utils.ClientIP(r, d.TrustProxy)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		select {
		case d.AuditTrigger <- struct{}{}:
			d.Logger.Info("manual catalog audit triggered via endpoint",
				logger.String("remote_ip", remote))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("Audit triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("catalog audit already queued",
				logger.String("remote_ip", remote))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("Audit already queued, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
