package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GitCommit,
		"full":    common.GetFullVersion(),
	})
}

// handlePortfolio handles GET /api/portfolio. The force query parameter
// bypasses the quote cache.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	force := r.URL.Query().Get("force") == "true"
	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), force)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioSummary handles GET /api/portfolio/summary.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), false)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snapshot.Summary())
}

// handlePortfolioHistory handles GET /api/portfolio/history?window=30.
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	points, err := s.app.PortfolioService.History(r.Context(), r.URL.Query().Get("window"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidWindow) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, points)
}

// handlePortfolioKPIs handles GET /api/portfolio/kpis?window=365.
func (s *Server) handlePortfolioKPIs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	kpis, err := s.app.PortfolioService.KPIs(r.Context(), r.URL.Query().Get("window"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, kpis)
}

// handleRefresh handles POST /api/refresh. It rebuilds the snapshot with
// every quote refetched.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), true)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}
