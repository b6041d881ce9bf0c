package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitroom/kitroom-backend/api/controllers"
	"github.com/kitroom/kitroom-backend/api/middleware"
	"github.com/kitroom/kitroom-backend/internal/holdings"
	"github.com/kitroom/kitroom-backend/internal/inventory"
	"github.com/kitroom/kitroom-backend/pkg/config"
	"github.com/kitroom/kitroom-backend/pkg/db"
	"github.com/kitroom/kitroom-backend/pkg/logger"
	pkgredis "github.com/kitroom/kitroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	holdingsService *holdings.Service,
	inventoryService *inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var idemStore pkgredis.IdempotencyStore
	var cachePinger pkgredis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", controllers.GetHoldings(holdingsService, logg))
			r.Post("/", controllers.SubmitHoldings(holdingsService, logg))
			r.Put("/", controllers.ReplaceHoldings(holdingsService, logg))
		})

		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/inventory/deductions", controllers.DeductInventory(holdingsService, logg))

		r.Get("/media", controllers.GetUniformMedia(inventoryService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventoryRecords(inventoryService, logg))
			r.Post("/", controllers.CreateInventoryRecord(inventoryService, logg))
			r.Route("/{recordId}", func(r chi.Router) {
				r.Get("/", controllers.GetInventoryRecord(inventoryService, logg))
				r.Put("/", controllers.UpdateInventoryRecord(inventoryService, logg))
				r.Delete("/", controllers.DeleteInventoryRecord(inventoryService, logg))
				r.Post("/adjust", controllers.AdjustInventoryRecord(inventoryService, logg))
			})
		})

		r.Put("/media", controllers.SetUniformMedia(inventoryService, logg))
	})

	return r
}
