package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analyticshttp "github.com/stocklens/stocklens/internal/analytics/http"
	reportshttp "github.com/stocklens/stocklens/internal/reports/http"
	"github.com/stocklens/stocklens/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ReportsHandler   *reportshttp.Handler
	AnalyticsHandler *analyticshttp.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with StockLens defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwCfg := MiddlewareConfig{Logger: params.Logger, Config: params.Config}
	for _, mw := range MiddlewareStack(mwCfg) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(mwCfg))

		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
