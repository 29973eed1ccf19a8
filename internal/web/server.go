// Package web provides the HTTP API used by the purchasing screen: supplier
// search, order preview and order export.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ginjaninja78/po-export/internal/config"
	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/supplier"
	weblog "github.com/ginjaninja78/po-export/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// multipartOverhead is allowed on top of the upload limit for the form
// fields and part headers.
const multipartOverhead = 64 << 10

// Server is the HTTP server for the order exporter.
type Server struct {
	converter *converter.Converter
	suppliers supplier.Directory
	options   csvwriter.Options
	cfg       config.ServerConfig
	now       func() time.Time

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(conv *converter.Converter, suppliers supplier.Directory, options csvwriter.Options, cfg config.ServerConfig) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = conv.MaxSize()
	}

	s := &Server{
		converter: conv,
		suppliers: suppliers,
		options:   options,
		cfg:       cfg,
		now:       time.Now,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/suppliers", s.handleSearchSuppliers)
		r.Get("/suppliers/{code}", s.handleGetSupplier)

		r.Post("/orders/preview", s.handlePreview)
		r.Post("/orders/export", s.handleExport)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
