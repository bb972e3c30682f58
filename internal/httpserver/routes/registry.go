package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Scope selects where a registrar mounts its routes.
type Scope int

const (
	// ScopeBase mounts under deps.BasePath.
	ScopeBase Scope = iota
	// ScopeRoot mounts at "/" (probes).
	ScopeRoot
)

type entry struct {
	reg   Registrar
	scope Scope
	mws   []Middleware
}

var registry []entry

// Register a registrar under the base path with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, scope: ScopeBase, mws: mws})
}

// RegisterRoot registers routes outside the base path.
func RegisterRoot(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, scope: ScopeRoot, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	mount := func(target chi.Router, scope Scope) {
		for _, e := range registry {
			if e.scope != scope {
				continue
			}
			if len(e.mws) == 0 {
				e.reg(target, d)
				continue
			}
			e.reg(target.With(e.mws...), d)
		}
	}

	mount(r, ScopeRoot)
	if d.BasePath == "" {
		mount(r, ScopeBase)
		return
	}
	r.Route(d.BasePath, func(sub chi.Router) { mount(sub, ScopeBase) })
}
