package handlers

import (
	"net/http"

	"nightwatcher/internal/config"
	"nightwatcher/internal/httputil"
	"nightwatcher/internal/portfolio"
	"nightwatcher/internal/risk"
	"nightwatcher/internal/validate"

	"github.com/go-chi/chi/v5"
)

// PortfolioHandler returns a handler for GET /api/portfolio/{address}?chain=.
func PortfolioHandler(c *portfolio.Client) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		address, err := validate.Address(chi.URLParam(r, "address"))
		if err != nil {
			httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidAddress, err.Error())
			return
		}

		chain := r.URL.Query().Get("chain")
		if chain == "" {
			chain = "eth"
		}

		snapshot, err := c.Fetch(r.Context(), address, chain)
		if err != nil {
			httputil.Error(rw, http.StatusBadGateway, config.ErrorPortfolioUnavailable, "could not fetch wallet data")
			return
		}

		httputil.JSON(rw, http.StatusOK, snapshot)
	}
}

// RiskHandler returns a handler for GET /api/risk/{address}.
func RiskHandler(c *risk.Client) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		address, err := validate.Address(chi.URLParam(r, "address"))
		if err != nil {
			httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidAddress, err.Error())
			return
		}

		verdict, err := c.Check(r.Context(), address)
		if err != nil {
			httputil.Error(rw, http.StatusBadGateway, config.ErrorRiskCheckFailed, "risk lookup failed")
			return
		}

		httputil.JSON(rw, http.StatusOK, verdict)
	}
}
