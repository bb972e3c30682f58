package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
	"github.com/hiic/library/internal/httpserver/mw"
)

func init() { Register(registerIndex, mw.Gzip()) }

func registerIndex(r chi.Router, d deps.Deps) {
	r.Get("/index", handlers.Index(d))
}
