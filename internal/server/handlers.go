package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/market"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// parseFilters normalizes query parameters. A filter error ends the request
// with a 400; any other failure is a server fault.
func (s *Server) parseFilters(w http.ResponseWriter, r *http.Request) (filter.Spec, bool) {
	spec, err := filter.Parse(r.URL.Query(), time.Now())
	if err != nil {
		var ferr *filter.InvalidFilterError
		if errors.As(err, &ferr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: ferr.Error()})
			return filter.Spec{}, false
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return filter.Spec{}, false
	}
	return spec, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Client went away; nothing useful to write.
			return
		}
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCongressTrades(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.CongressTrades(r.Context(), spec)
	s.respond(w, r, res, err)
}

func (s *Server) handleGreekFlow(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.GreekFlow(r.Context(), spec)
	s.respond(w, r, res, err)
}

func (s *Server) handleGreekDescriptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, market.GreekDescriptions())
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.Earnings(r.Context(), spec)
	s.respond(w, r, res, err)
}

func (s *Server) handleInsiderTrades(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.InsiderTrades(r.Context(), spec)
	s.respond(w, r, res, err)
}

func (s *Server) handlePremiumFlow(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.PremiumFlow(r.Context(), spec)
	s.respond(w, r, res, err)
}

type sectorsResponse struct {
	Sectors      []string          `json:"sectors"`
	Descriptions map[string]string `json:"descriptions"`
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sectorsResponse{
		Sectors:      market.Sectors(),
		Descriptions: market.SectorDescriptions(),
	})
}

func (s *Server) handleMarketTide(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.parseFilters(w, r)
	if !ok {
		return
	}
	res, err := s.service.MarketTide(r.Context(), spec)
	s.respond(w, r, res, err)
}

type healthResponse struct {
	Status             string `json:"status"`
	UpstreamConfigured bool   `json:"upstream_configured"`
	WSEnabled          bool   `json:"ws_enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:             "ok",
		UpstreamConfigured: s.config.Upstream.APIKey != "",
		WSEnabled:          s.config.WS.Enabled,
	})
}
