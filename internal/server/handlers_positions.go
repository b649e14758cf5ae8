package server

import (
	"net/http"
	"strings"

	"github.com/jthierry/folio/internal/models"
)

// handlePositions handles /api/positions (GET list, POST add).
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		positions, err := s.app.PositionService.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, positions)

	case http.MethodPost:
		var pos models.Position
		if !DecodeJSON(w, r, &pos) {
			return
		}
		if err := s.app.PositionService.Add(r.Context(), pos); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, pos)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routePosition handles /api/positions/{ticker} (GET, PUT, DELETE).
// The broker query parameter disambiguates the same ticker held at
// several brokers.
func (s *Server) routePosition(w http.ResponseWriter, r *http.Request) {
	ticker := PathParam(r, "/api/positions/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	broker := r.URL.Query().Get("broker")

	switch r.Method {
	case http.MethodGet:
		pos, err := s.app.PositionService.Get(r.Context(), broker, ticker)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, pos)

	case http.MethodPut:
		var pos models.Position
		if !DecodeJSON(w, r, &pos) {
			return
		}
		pos.Ticker = strings.ToUpper(ticker)
		if pos.Broker == "" {
			pos.Broker = broker
		}
		if err := s.app.PositionService.Update(r.Context(), pos); err != nil {
			if strings.Contains(err.Error(), "not found") {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, pos)

	case http.MethodDelete:
		if err := s.app.PositionService.Delete(r.Context(), broker, ticker); err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handleTransactions handles /api/transactions (GET journal, POST apply).
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs, err := s.app.PositionService.Transactions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, txs)

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		applied, err := s.app.PositionService.Apply(r.Context(), tx)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, applied)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
