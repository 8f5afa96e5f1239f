// Package http exposes the ledger over a small JSON API plus export
// downloads.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/middleware/ratelimit"
	"cassa/internal/middleware/security"
	"cassa/internal/report"
	"cassa/internal/sheets"
)

// Ledger is the subset of the ledger service the handlers need.
type Ledger interface {
	Create(ctx context.Context, in core.Input) (core.Transaction, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Recent() []core.Transaction
	Statistics() core.Statistics
	Report() (report.Document, error)
	Sheet() (report.Sheet, error)
}

// Server wraps an http.Server routing to the ledger handlers.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	ledger     Ledger
	sheets     sheets.SheetWriter
	limiter    *ratelimit.Limiter
	logger     *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSheetWriter enables POST /export/sheets.
func WithSheetWriter(w sheets.SheetWriter) Option {
	return func(s *Server) { s.sheets = w }
}

// WithRateLimit caps mutating and export requests per client and minute.
// Zero or less disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentHTTP)
		}
	}
}

// NewServer creates the router and the underlying http.Server listening on
// addr.
func NewServer(addr string, ledger Ledger, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		ledger: ledger,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(log.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(security.Headers(security.DefaultHeadersConfig()))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/transactions", s.handleListTransactions)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/report", s.handleReport)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimited)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		})
	})

	s.router.Route("/export", func(r chi.Router) {
		r.Use(s.rateLimited)
		r.Get("/xlsx", s.handleExportXLSX)
		r.Get("/pdf", s.handleExportPDF)
		r.Post("/sheets", s.handleExportSheets)
	})
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.NewFields().WithClientIP(clientIP(r)).WithRequestID(middleware.GetReqID(r.Context())).ToSlice()...)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(next)
}

// clientIP strips the port from RemoteAddr. RealIP has already applied
// forwarding headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
