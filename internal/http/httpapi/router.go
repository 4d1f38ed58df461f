package httpapi

import (
	stdhttp "net/http"
	"time"

	"server/internal/http/handlers"
	"server/internal/infra"
	mw "server/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route behind the shared middleware chain. Everything
// except the health check requires a valid bearer token.
func NewRouter(app *handlers.App, cfg *infra.Config, lookup mw.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		mw.Logger(app.Log),
		mw.CORS(cfg.AllowedOrigins),
		mw.RateLimit(cfg.RateLimitPerMin, time.Minute),
		mw.I18N(cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthJWT(cfg.JWTSecret))

		r.Route("/scripts", func(r chi.Router) {
			r.Get("/", app.ListScripts)
			r.Post("/", app.CreateScript)
			r.Get("/{id}", app.GetScript)
			r.Patch("/{id}", app.UpdateScript)
			r.Delete("/{id}", app.DeleteScript)
		})
		r.Post("/generate-script", app.GenerateScript)

		r.Get("/assets", app.ListAssets)
		r.Post("/assets", app.CreateAsset)
		r.Patch("/assets/{id}/status", app.UpdateAssetStatus)
		r.Post("/generate-assets", app.GenerateAssets)
		r.Post("/generate-assets-zip", app.GenerateAssetsZip)
		r.Post("/download-asset", app.DownloadAsset)

		r.Post("/generate-audio", app.GenerateAudio)
		r.Post("/download-audio", app.DownloadAudio)
		r.Get("/audio-history", app.AudioHistory)
	})

	return r
}
