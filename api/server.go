// Package api provides the HTTP gateway for Stockgate.
//
// It exposes read endpoints for single-stock detail, market overview,
// price history, and news, reshaping upstream Yahoo Finance responses
// into the flat JSON schema the frontend consumes.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/stockgate/internal/config"
	"github.com/seenimoa/stockgate/internal/normalize"
	"github.com/seenimoa/stockgate/internal/yahoo"
	"github.com/seenimoa/stockgate/pkg/models"
)

// upstreamTimeout bounds a single upstream call made by a handler.
const upstreamTimeout = 15 * time.Second

// Server is the HTTP gateway server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	yahoo  *yahoo.Client
}

// NewServer creates a configured gateway server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	client := yahoo.NewClient(yahoo.Config{
		QueryBaseURL: cfg.Yahoo.QueryBaseURL,
		FeedBaseURL:  cfg.Yahoo.FeedBaseURL,
		Timeout:      time.Duration(cfg.Yahoo.TimeoutSec) * time.Second,
	})
	return NewServerWithClient(cfg, client)
}

// NewServerWithClient creates a server around an existing upstream client.
func NewServerWithClient(cfg *config.Config, client *yahoo.Client) *Server {
	srv := &Server{
		cfg:   cfg,
		yahoo: client,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stock/{symbol}", s.handleStockDetail)
		r.Get("/stock/{symbol}/history", s.handleStockHistory)
		r.Get("/market/overview", s.handleMarketOverview)
		r.Get("/market/news", s.handleMarketNews)
	})

	return r
}

// recoverer catches panics escaping a handler, logs them, and answers with
// the standard error envelope. The process stays alive; only the one
// request fails.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeError(w, http.StatusInternalServerError, "Internal server error", rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Response types
// ============================================================

// ErrorEnvelope is the uniform JSON shape returned on any server-side failure.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Stockgate API — stock and market data gateway",
		Endpoints: []string{
			"/api/stock/{symbol}",
			"/api/market/overview",
			"/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Server is running",
	})
}

// handleStockDetail serves GET /api/stock/{symbol}.
// The symbol is passed through to the upstream verbatim; any upstream
// failure maps to a 500 with the error envelope and is not retried.
func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	bundle, err := s.yahoo.FetchQuoteSummary(ctx, symbol, yahoo.DefaultModules)
	if err != nil {
		log.Printf("stock detail %s: %v", symbol, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch stock data", err)
		return
	}

	writeJSON(w, http.StatusOK, normalize.StockDetail(symbol, bundle))
}

// handleMarketOverview serves GET /api/market/overview.
// The three index quotes are fetched sequentially and independently: a
// failed fetch is downgraded to an error-marked entry so a single slow or
// broken symbol never empties the response. The output order matches
// models.MarketIndices.
func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	quotes := make([]models.MarketIndexQuote, 0, len(models.MarketIndices))
	for _, symbol := range models.MarketIndices {
		quotes = append(quotes, s.fetchIndexQuote(r.Context(), symbol))
	}
	writeJSON(w, http.StatusOK, quotes)
}

// fetchIndexQuote isolates one index fetch; failures become an error marker.
func (s *Server) fetchIndexQuote(ctx context.Context, symbol string) models.MarketIndexQuote {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	q, err := s.yahoo.FetchQuote(ctx, symbol)
	if err != nil {
		log.Printf("market overview %s: %v", symbol, err)
		return models.MarketIndexQuote{Symbol: symbol, Error: true}
	}
	return models.MarketIndexQuote{
		Symbol:        symbol,
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
	}
}

// handleStockHistory serves GET /api/stock/{symbol}/history?range=1mo&interval=1d.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = "1mo"
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1d"
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	candles, err := s.yahoo.FetchChart(ctx, symbol, rng, interval)
	if err != nil {
		log.Printf("stock history %s: %v", symbol, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch price history", err)
		return
	}

	writeJSON(w, http.StatusOK, candles)
}

// handleMarketNews serves GET /api/market/news?symbol=AAPL&limit=20.
// Without a symbol the S&P 500 feed stands in for market-wide headlines.
func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = "^GSPC"
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), upstreamTimeout)
	defer cancel()

	articles, err := s.yahoo.FetchNews(ctx, symbol, limit)
	if err != nil {
		log.Printf("market news %s: %v", symbol, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch news", err)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, summary string, cause interface{}) {
	msg := ""
	switch c := cause.(type) {
	case error:
		msg = c.Error()
	case string:
		msg = c
	default:
		if c != nil {
			msg = fmt.Sprintf("%v", c)
		}
	}
	writeJSON(w, status, ErrorEnvelope{
		Error:   summary,
		Message: msg,
	})
}
