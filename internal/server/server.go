// Package server exposes the panel API over HTTP.
package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/config"
	"github.com/zomlab/whaleboard/internal/service"
)

type Server struct {
	service *service.Service
	config  *config.Config
	logger  *zap.Logger

	// tideWS is mounted at /ws/market-tide when websocket streaming is
	// enabled. Nil disables the route.
	tideWS http.Handler
}

func NewServer(svc *service.Service, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		service: svc,
		config:  cfg,
		logger:  logger,
	}
}

// WithTideStream mounts a websocket handler for the market tide feed.
func (s *Server) WithTideStream(h http.Handler) *Server {
	s.tideWS = h
	return s
}

func NewRouter(server *Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)
	r.Use(zapLoggerMiddleware(logger))

	r.Get("/health", server.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/congress-trades/data", server.handleCongressTrades)
		api.Get("/greek-flow/data", server.handleGreekFlow)
		api.Get("/greek-flow/descriptions", server.handleGreekDescriptions)
		api.Get("/earnings/data", server.handleEarnings)
		api.Get("/insider-trading/data", server.handleInsiderTrades)
		api.Get("/premium-flow/data", server.handlePremiumFlow)
		api.Get("/premium-flow/sectors", server.handleSectors)
		api.Get("/market-tide/data", server.handleMarketTide)
	})

	if server.tideWS != nil {
		r.Handle("/ws/market-tide", server.tideWS)
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func zapLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", maskQueryKey(r.URL.RawQuery)),
			)
			next.ServeHTTP(w, r)
		})
	}
}

// maskQueryKey masks the "key" parameter in a query string
func maskQueryKey(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}
	if key := values.Get("key"); key != "" {
		if len(key) > 4 {
			values.Set("key", key[:4]+"****")
		}
	}
	// Rebuild query string preserving order as much as possible
	var parts []string
	for k, vs := range values {
		for _, v := range vs {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
