package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/quotes3d-backend/api/controllers"
	"github.com/angelmondragon/quotes3d-backend/api/middleware"
	"github.com/angelmondragon/quotes3d-backend/internal/quotes"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/db"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
	"github.com/angelmondragon/quotes3d-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	quotesService quotes.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Typed nils must not reach the readiness probe as non-nil interfaces.
	var redisP redis.Pinger
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		redisP = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/materials", controllers.MaterialList(cfg.Pricing, logg))
		r.Post("/quotes", controllers.QuoteCreate(quotesService, cfg.Upload, logg))
		r.Get("/quotes/{quoteId}", controllers.QuoteFetch(quotesService, logg))
		r.Post("/quotes/{quoteId}/revise", controllers.QuoteRevise(quotesService, logg))
	})

	return r
}
