package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lulatiAI/ai-image-backend/internal/http/handlers"
	"github.com/lulatiAI/ai-image-backend/internal/infra"
	"github.com/lulatiAI/ai-image-backend/internal/middleware"
)

// NewRouter assembles the HTTP surface around the generation pipeline.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Post("/images/generate", app.ImagesGenerate)
		r.Post("/videos/generate", app.VideosGenerate)
		r.Post("/videos/animate", app.VideosAnimate)
		r.Get("/downloads/{id}", app.Download)
	})

	return r
}
