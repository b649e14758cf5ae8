package server

import (
	"errors"
	"net/http"

	"github.com/jthierry/folio/internal/models"
)

// handlePrice handles GET /api/price/{ticker}?class=crypto.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/price/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	class := models.AssetStock
	if c := r.URL.Query().Get("class"); c != "" {
		parsed, err := models.ParseAssetClass(c)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		class = parsed
	}

	var quote *models.Quote
	var err error
	if r.URL.Query().Get("force") == "true" {
		quote, err = s.app.PriceCache.Refresh(r.Context(), ticker, class)
	} else {
		quote, err = s.app.PriceCache.Get(r.Context(), ticker, class)
	}
	if err != nil {
		if errors.Is(err, models.ErrRateLimited) {
			WriteError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// handleAssetHistory handles GET /api/assets/{ticker}/history?period=1y.
func (s *Server) handleAssetHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/assets/", "/history")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	class := models.AssetStock
	if c := r.URL.Query().Get("class"); c != "" {
		parsed, err := models.ParseAssetClass(c)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		class = parsed
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}

	points, err := s.app.PortfolioService.AssetHistory(r.Context(), ticker, class, period)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, points)
}

// handleFXRates handles GET /api/fx/rates.
func (s *Server) handleFXRates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rates, err := s.app.FXClient.GetRates(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"base":  s.app.Config.Portfolio.BaseCurrency,
		"rates": rates,
	})
}
