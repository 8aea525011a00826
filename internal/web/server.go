package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vbonduro/fieldsales/internal/service"
)

// Server exposes the field service as a local JSON API for the device UI.
type Server struct {
	service *service.FieldService
	router  chi.Router
	logger  *slog.Logger
}

func NewServer(svc *service.FieldService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Post("/", s.handleLogin)
		r.Delete("/", s.handleLogout)
	})

	r.Get("/purchases", s.handleListPurchases)
	r.Post("/purchases", s.handleCreatePurchase)
	r.Get("/points-of-sale", s.handleListPointsOfSale)
	r.Post("/points-of-sale", s.handleCreatePointOfSale)
	r.Get("/activities", s.handleListActivities)
	r.Get("/stock", s.handleStock)
	r.Get("/sales", s.handleListSales)
	r.Post("/sales", s.handleRecordSale)
	r.Get("/sales/summary", s.handleSalesSummary)
	r.Get("/lookups/villes", s.handleVilles)
	r.Get("/lookups/quartiers", s.handleQuartiers)
	r.Get("/report", s.handleReport)
	r.Post("/focus/{collection}", s.handleFocus)
	r.Delete("/cache", s.handleResetCache)
	r.Delete("/device", s.handleWipeDevice)
	r.Post("/photos", s.handleSavePhoto)
}

// securityHeaders sets response headers common to every API response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr with the timeouts the device UI
// expects. Remote calls are bounded separately by the API client timeout.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
