package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"stairviz/internal/http/handlers"
	"stairviz/internal/middleware"
)

// Options carries router-level configuration.
type Options struct {
	AllowedOrigins []string
	RateLimit      int
	CountryLookup  middleware.CountryLookup
}

// NewRouter wires the embed-tool API.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale("en", opts.CountryLookup),
	)
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/tenants/{tenant_id}/styles", app.TenantStyles)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Post("/navigate", app.SessionNavigate)
			r.Post("/upload", app.Upload)
			r.Post("/style", app.StyleSelect)
			r.Post("/generate", app.Generate)
			r.Post("/download", app.Download)
			r.Post("/gate", app.GateSubmit)
			r.Post("/estimate", app.Estimate)
			r.Post("/quote", app.Quote)
		})
	})

	return r
}
