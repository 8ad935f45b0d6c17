package api

import (
	"log/slog"

	"nightwatcher/internal/api/handlers"
	"nightwatcher/internal/portfolio"
	"nightwatcher/internal/risk"
	"nightwatcher/internal/store"
	"nightwatcher/internal/tracker"
	"nightwatcher/internal/watcher"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Dependencies holds all service references needed by the API layer.
type Dependencies struct {
	Store     *store.Store
	Tracker   *tracker.Tracker
	Watcher   *watcher.Watcher
	Portfolio *portfolio.Client
	Risk      *risk.Client
}

// NewRouter creates and configures the chi router with all middleware and routes.
func NewRouter(deps *Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	slog.Info("router initialized",
		"middleware", []string{"realIP", "recoverer"},
	)

	r.Get("/api/health", handlers.HealthHandler(deps.Store, deps.Watcher))

	r.Route("/api", func(r chi.Router) {
		r.Post("/wallets", handlers.TrackWalletHandler(deps.Tracker))
		r.Get("/wallets", handlers.ListWalletsHandler(deps.Tracker))
		r.Delete("/wallets", handlers.StopTrackingHandler(deps.Tracker))

		r.Get("/portfolio/{address}", handlers.PortfolioHandler(deps.Portfolio))
		r.Get("/risk/{address}", handlers.RiskHandler(deps.Risk))
	})

	return r
}
