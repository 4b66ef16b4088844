package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vantage-erp/vantage-erp/internal/forecast"
	"github.com/vantage-erp/vantage-erp/internal/observability"
	"github.com/vantage-erp/vantage-erp/internal/purchasing"
	"github.com/vantage-erp/vantage-erp/internal/receiving"
	"github.com/vantage-erp/vantage-erp/internal/reorder"
	"github.com/vantage-erp/vantage-erp/internal/sales"
	"github.com/vantage-erp/vantage-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	ForecastHandler   *forecast.Handler
	ReorderHandler    *reorder.Handler
	SalesHandler      *sales.Handler
	PurchasingHandler *purchasing.Handler
	ReceivingHandler  *receiving.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Vantage defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.ForecastHandler != nil {
		params.ForecastHandler.MountRoutes(r)
	}
	if params.ReorderHandler != nil {
		params.ReorderHandler.MountRoutes(r)
	}
	if params.SalesHandler != nil {
		params.SalesHandler.MountRoutes(r)
	}
	if params.PurchasingHandler != nil {
		params.PurchasingHandler.MountRoutes(r)
	}
	if params.ReceivingHandler != nil {
		params.ReceivingHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		params.JobHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
