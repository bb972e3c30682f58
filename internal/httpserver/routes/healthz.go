package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
)

func init() { RegisterRoot(registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}
