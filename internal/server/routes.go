package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Portfolio
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/summary", s.handlePortfolioSummary)
	mux.HandleFunc("/api/portfolio/history", s.handlePortfolioHistory)
	mux.HandleFunc("/api/portfolio/kpis", s.handlePortfolioKPIs)
	mux.HandleFunc("/api/refresh", s.handleRefresh)

	// Positions and transactions
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/positions/", s.routePosition)
	mux.HandleFunc("/api/transactions", s.handleTransactions)

	// Market data
	mux.HandleFunc("/api/price/", s.handlePrice)
	mux.HandleFunc("/api/assets/", s.handleAssetHistory)
	mux.HandleFunc("/api/fx/rates", s.handleFXRates)
}
