// Package api provides the HTTP REST API server for getvalue.
//
// It exposes endpoints for loading companies by ticker, importing pasted
// statements, and reading the stored periods, ratios, CSV export and an HTML
// dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/internal/config"
	"github.com/seenimoa/getvalue/internal/manager"
	"github.com/seenimoa/getvalue/internal/provider"
	"github.com/seenimoa/getvalue/internal/providers/fmp"
	"github.com/seenimoa/getvalue/internal/report"
	"github.com/seenimoa/getvalue/internal/store"
	"github.com/seenimoa/getvalue/pkg/models"
	"github.com/seenimoa/getvalue/pkg/utils"
)

// maxImportBytes bounds the body of an import request.
const maxImportBytes = 4 << 20

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	mgr    *manager.Manager
	reg    *provider.Registry
	now    func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
// reg lists the registered sources reported by the health endpoint.
func NewServer(cfg *config.Config, mgr *manager.Manager, reg *provider.Registry) *Server {
	srv := &Server{
		cfg: cfg,
		mgr: mgr,
		reg: reg,
		now: time.Now,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("Addr", addr).Msg("listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.handleListCompanies)
			r.Post("/import", s.handleImport)

			r.Route("/{ticker}", func(r chi.Router) {
				r.Get("/", s.handleGetCompany)
				r.Delete("/", s.handleDeleteCompany)
				r.Get("/ratios", s.handleRatios)
				r.Get("/periods", s.handlePeriods)
				r.Get("/csv", s.handleCSV)
				r.Get("/dashboard", s.handleDashboard)
			})
		})

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request through zerolog and puts a
// request-scoped logger on the context.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := log.Logger.With().Str("RequestID", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
		logger.Info().
			Str("Method", sanitize(r.Method)).
			Str("Path", sanitize(r.URL.Path)).
			Int("Status", status).
			Int("Bytes", ww.BytesWritten()).
			Dur("Elapsed", time.Since(start)).
			Msg("request")
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ImportRequest is the body for POST /api/v1/companies/import.
type ImportRequest struct {
	Text   string `json:"text"`
	Ticker string `json:"ticker,omitempty"`
}

// CompanyResponse wraps a company with its partial-data flag.
type CompanyResponse struct {
	Company *models.CompanyFinancials `json:"company"`
	Partial bool                      `json:"partial"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string   `json:"status"`
	Companies int      `json:"companies"`
	API       bool     `json:"api_configured"`
	Sources   []string `json:"sources"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:    "ok",
			Companies: len(s.mgr.Tickers()),
			API:       s.cfg.FMP.APIKey != "",
			Sources:   s.sourceNames(),
		},
	})
}

// sourceNames returns the registered source names, empty when none.
func (s *Server) sourceNames() []string {
	names := []string{}
	if s.reg == nil {
		return names
	}
	for _, info := range s.reg.List() {
		names = append(names, info.Name)
	}
	return names
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.mgr.Tickers(),
	})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if !utils.IsTickerLike(ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
		refresh = b
	}

	c, err := s.mgr.Company(r.Context(), ticker, refresh)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CompanyResponse{Company: c, Partial: c.IsPartial()},
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	c, err := s.mgr.LoadCompany(r.Context(), req.Text, req.Ticker)
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CompanyResponse{Company: c, Partial: c.IsPartial()},
	})
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if err := s.mgr.Evict(ticker); err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"evicted": utils.NormalizeTicker(ticker)},
	})
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cached(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    fundamental.RatioSeries(c),
	})
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cached(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    fundamental.RelevantPeriods(c),
	})
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cached(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+c.Ticker+`.csv"`)
	if err := report.WriteCSV(w, c); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("Ticker", c.Ticker).Msg("csv export failed")
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cached(w, r)
	if !ok {
		return
	}
	html, err := report.GenerateHTML(c, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html)) //nolint:errcheck
}

// cached looks up the company named by the ticker URL parameter and writes
// a 404 when it is not stored.
func (s *Server) cached(w http.ResponseWriter, r *http.Request) (*models.CompanyFinancials, bool) {
	c, err := s.mgr.Cached(chi.URLParam(r, "ticker"))
	if err != nil {
		writeLoadError(w, r, err)
		return nil, false
	}
	return c, true
}

// ============================================================
// Helpers
// ============================================================

// statusFor maps load errors to HTTP status codes.
func statusFor(err error) int {
	var badCreds *provider.ErrInvalidCredentials
	var missing *provider.ErrMissingParam
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fmp.ErrCompanyNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrUnrecognizedSource), errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrAPIUnavailable), errors.As(err, &badCreds):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("StatusCode", status).Msg("company request failed")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
