package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hiic/library/internal/httpserver/deps"
	"github.com/hiic/library/internal/httpserver/handlers"
	"github.com/hiic/library/internal/httpserver/mw"
)

func init() { Register(registerAssets) }

func registerAssets(r chi.Router, d deps.Deps) {
	if d.AssetRateBurst > 0 {
		r = r.With(mw.RateLimitAssets(mw.AssetLimit{
			Burst:      d.AssetRateBurst,
			PerMinute:  d.AssetRatePerMin,
			TrustProxy: d.TrustProxy,
			MaxClients: 10000,
		}, d.Logger))
	}
	r.Get("/assets/*", handlers.Asset(d))
}
