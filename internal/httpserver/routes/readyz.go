package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
	"github.com/hiic/library/internal/httpserver/mw"
)

func init() { RegisterRoot(registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(mw.OperatorOnly(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
