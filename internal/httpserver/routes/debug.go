package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
	"github.com/hiic/library/internal/httpserver/mw"
)

func init() { Register(registerDebug, mw.Gzip()) }

func registerDebug(r chi.Router, d deps.Deps) {
	if !d.DebugEnabled {
		return
	}
	r.With(mw.OperatorOnly(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/debug", handlers.Debug(d))
}
