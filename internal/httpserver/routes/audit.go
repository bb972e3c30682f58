package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
	"github.com/hiic/library/internal/httpserver/mw"
)

func init() { Register(registerAudit) }

func registerAudit(r chi.Router, d deps.Deps) {
	if d.AuditTrigger == nil {
		return
	}
	r.With(mw.OperatorOnly(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Post("/audit", handlers.Audit(d))
}
