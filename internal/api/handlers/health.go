package handlers

import (
	"net/http"

	"nightwatcher/internal/config"
	"nightwatcher/internal/httputil"
	"nightwatcher/internal/store"
	"nightwatcher/internal/watcher"
)

// HealthHandler returns a handler for GET /api/health.
func HealthHandler(st *store.Store, w *watcher.Watcher) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		stats, cycles := w.LastStats()

		users, err := st.CountUsers()
		if err != nil {
			httputil.Error(rw, http.StatusInternalServerError, config.ErrorDatabase, "failed to count users")
			return
		}
		wallets, err := st.CountWallets()
		if err != nil {
			httputil.Error(rw, http.StatusInternalServerError, config.ErrorDatabase, "failed to count wallets")
			return
		}

		httputil.JSON(rw, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"users":      users,
			"wallets":    wallets,
			"cycles":     cycles,
			"last_cycle": stats,
		})
	}
}
