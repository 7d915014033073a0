package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelinelabs/orderfin-backend/api/controllers"
	"github.com/avelinelabs/orderfin-backend/api/middleware"
	"github.com/avelinelabs/orderfin-backend/internal/financials"
	"github.com/avelinelabs/orderfin-backend/pkg/config"
	"github.com/avelinelabs/orderfin-backend/pkg/logger"
)

// RouterParams collect everything the API routes depend on.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DBPinger   controllers.Pinger
	RedisP     controllers.Pinger
	Financials financials.Service
	Registry   *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(params.Config))
		r.Get("/ready", controllers.HealthReady(params.Config, params.Logger, params.DBPinger, params.RedisP))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	maxBatch := 0
	if params.Config != nil {
		maxBatch = params.Config.Financials.MaxBatchSize
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/financials", controllers.BatchOrderFinancials(params.Financials, params.Logger, maxBatch))
		r.Route("/{orderId}", func(r chi.Router) {
			r.Get("/financials", controllers.OrderFinancials(params.Financials, params.Logger))
			r.Get("/payment-status", controllers.OrderPaymentStatus(params.Financials, params.Logger))
			r.Get("/total-balance", controllers.OrderTotalBalance(params.Financials, params.Logger))
			r.Get("/remaining-grant", controllers.OrderRemainingGrant(params.Financials, params.Logger))
		})
	})

	return r
}
